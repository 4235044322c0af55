package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// OrderPlacedEvent mirrors the outbox payload published for a placed order.
type OrderPlacedEvent struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	Total   float64 `json:"total"`
}

// messageReader is satisfied by *kafka.Reader.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer credits loyalty points from the order event stream: one point per
// whole dollar of order total, floored.
type Consumer struct {
	store  ProfileStore
	reader messageReader
}

func NewConsumer(store ProfileStore, topic string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "rewards-accrual",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{store, reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	var event OrderPlacedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		log.Printf("error parsing message: %v", err)
		return
	}
	if event.OrderID == "" || event.UserID == "" {
		log.Printf("skipping event with missing ids: %s", m.Value)
		return
	}

	points := pointsFor(event.Total)
	if points == 0 {
		return
	}

	if err := c.store.AddPoints(ctx, event.UserID, event.OrderID, points); err != nil {
		if errors.Is(err, ErrAlreadyAccrued) {
			log.Printf("points for order %s already accrued, skipping", event.OrderID)
			return
		}
		log.Printf("failed to accrue points for order %s: %v", event.OrderID, err)
		return
	}

	log.Printf("accrued %d points for user %s (order %s)", points, event.UserID, event.OrderID)
}

// pointsFor floors the order total to whole dollars. $24.99 earns 24 points.
func pointsFor(total float64) int {
	if total <= 0 {
		return 0
	}
	return int(decimal.NewFromFloat(total).Floor().IntPart())
}
