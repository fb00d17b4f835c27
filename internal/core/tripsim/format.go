package tripsim

import (
	"fmt"
	"math"
	"time"
)

// FormatDistance renders kilometres with one decimal, e.g. "55.7 km".
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}

// EstimateMinutes converts a distance into whole minutes at the given speed.
func EstimateMinutes(km, speedKmh float64) int {
	if speedKmh <= 0 {
		return 0
	}
	return int(math.Round(km / speedKmh * 60))
}

// FormatDuration renders minutes as "34 min" or "1h 1min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

// formatETA scales the first trip estimate by the share of the simulated
// budget still left. It deliberately ignores the remaining distance.
func formatETA(progress float64, estimatedMinutes int, completed bool) string {
	if completed {
		return "Arrived"
	}
	left := int(math.Ceil((1 - progress) * float64(estimatedMinutes)))
	if left < 1 {
		return "< 1 min"
	}
	return FormatDuration(left)
}

// formatTimeRemaining renders the wall-clock seconds left in the run.
func formatTimeRemaining(progress float64, budget time.Duration) string {
	left := time.Duration((1 - progress) * float64(budget))
	secs := int(math.Ceil(left.Seconds()))
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d s", secs)
}
