package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyAccrued means this order's points have been credited before.
// Delivery from the outbox is at-least-once, so replays are expected.
var ErrAlreadyAccrued = errors.New("points already accrued for this order")

// PointsReader is the read side of the profile store.
type PointsReader interface {
	GetPoints(ctx context.Context, userID string) (int, error)
}

// ProfileStore tracks loyalty balances. AddPoints is keyed by order id so a
// replayed event cannot credit twice.
type ProfileStore interface {
	PointsReader
	AddPoints(ctx context.Context, userID, orderID string, points int) error
}

type MongoStore struct {
	profiles *mongo.Collection
	ledger   *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		profiles: db.Collection("reward_profiles"),
		ledger:   db.Collection("reward_ledger"),
	}
}

// GetPoints returns the user's balance; a user with no profile has zero.
func (s *MongoStore) GetPoints(ctx context.Context, userID string) (int, error) {
	var profile struct {
		Points int `bson:"points"`
	}

	filter := bson.M{"user_id": userID}
	err := s.profiles.FindOne(ctx, filter).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get points: %w", err)
	}

	return profile.Points, nil
}

// AddPoints writes a ledger entry keyed by order id, then increments the
// balance. The unique ledger key is what makes accrual idempotent; if the
// increment fails after the ledger insert the event is retried and reports
// ErrAlreadyAccrued, which the caller treats as done.
func (s *MongoStore) AddPoints(ctx context.Context, userID, orderID string, points int) error {
	entry := bson.M{
		"_id":        orderID,
		"user_id":    userID,
		"points":     points,
		"created_at": time.Now(),
	}
	if _, err := s.ledger.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyAccrued
		}
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	now := time.Now()
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$inc": bson.M{"points": points},
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := s.profiles.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add points: %w", err)
	}

	return nil
}

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := db.Collection("reward_profiles").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
