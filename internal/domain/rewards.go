package domain

// DefaultRewardThreshold is the point target for the next reward tier.
const DefaultRewardThreshold = 2000

// ProgressPercent is the progress toward the next reward, clamped at 100.
// Total for all points >= 0; threshold must be > 0 (a configuration
// invariant, not checked here).
func ProgressPercent(points, threshold int) float64 {
	pct := float64(points) / float64(threshold) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// PointsToNext is how many points remain until the next reward. A balance at
// an exact multiple of the threshold reports the full threshold again.
func PointsToNext(points, threshold int) int {
	return threshold - points%threshold
}
