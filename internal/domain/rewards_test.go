package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0.0, ProgressPercent(0, 2000))
	assert.Equal(t, 50.0, ProgressPercent(1000, 2000))
	assert.Equal(t, 100.0, ProgressPercent(2000, 2000))
	assert.Equal(t, 100.0, ProgressPercent(5000, 2000), "clamped at 100")
}

func TestProgressPercent_MonotonicNonDecreasing(t *testing.T) {
	prev := 0.0
	for p := 0; p <= 4400; p += 137 {
		cur := ProgressPercent(p, DefaultRewardThreshold)
		assert.GreaterOrEqual(t, cur, prev, "points=%d", p)
		prev = cur
	}
}

func TestPointsToNext(t *testing.T) {
	assert.Equal(t, 2000, PointsToNext(0, 2000))
	assert.Equal(t, 1900, PointsToNext(100, 2000))
	assert.Equal(t, 1, PointsToNext(1999, 2000))
	// Exact multiple wraps to the full threshold (display quirk kept as-is).
	assert.Equal(t, 2000, PointsToNext(2000, 2000))
	assert.Equal(t, 2000, PointsToNext(4000, 2000))
	assert.Equal(t, 1500, PointsToNext(2500, 2000))
}
