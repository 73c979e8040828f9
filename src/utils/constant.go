package utils

import "math"

// -----------------------------------------------------------------------------

// Constants and helper functions for data retention and memory management.
// Synthetic indices tick roughly every 2 seconds, so a full day of history
// is ~43200 points.
const (
	DefaultRetentionDays = 7
	pointsPerDay         = 43200
)

// -----------------------------------------------------------------------------

// CalculateMaxDataPoints calculates max in-memory data points based on
// retention days.
func CalculateMaxDataPoints(days int) int {
	return int(math.Ceil(float64(days))) * pointsPerDay
}
