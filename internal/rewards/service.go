package rewards

import (
	"context"
	"fmt"

	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
)

// Progress is the rewards standing shown to the user.
type Progress struct {
	Points          int     `json:"points"`
	Threshold       int     `json:"threshold"`
	ProgressPercent float64 `json:"progress_percent"`
	PointsToNext    int     `json:"points_to_next"`
}

type Service struct {
	store     PointsReader
	threshold int
}

func NewService(store PointsReader, threshold int) *Service {
	if threshold <= 0 {
		threshold = domain.DefaultRewardThreshold
	}
	return &Service{store: store, threshold: threshold}
}

func (s *Service) Progress(ctx context.Context, userID string) (*Progress, error) {
	points, err := s.store.GetPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get points: %w", err)
	}
	return s.ProgressFor(points), nil
}

// ProgressFor converts a raw balance (as delivered by the feed) into the
// shape the progress endpoint returns.
func (s *Service) ProgressFor(points int) *Progress {
	return &Progress{
		Points:          points,
		Threshold:       s.threshold,
		ProgressPercent: domain.ProgressPercent(points, s.threshold),
		PointsToNext:    domain.PointsToNext(points, s.threshold),
	}
}
