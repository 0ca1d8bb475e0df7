// Package lifespan turns condition scores into lifespan estimates and ranks
// avatars by their stored estimate.
package lifespan

const (
	MinScore = 0
	MaxScore = 1000

	// scores at or above this earn the full 150-year anchor
	anchorScore = 840
)

// RemainingDays maps a condition score in [0,1000] to an estimated full
// lifespan in days. The curve is piecewise linear and increasing; callers
// round the result. Scores outside the range are not clamped.
func RemainingDays(score int) float64 {
	s := float64(score)
	switch {
	case score > anchorScore:
		return 365*200 - (MaxScore-s)*109.5
	case score == anchorScore:
		return 365 * 150
	case score >= 740:
		return 365*150 - (anchorScore-s)*73
	case score >= 640:
		return 365*130 - (740-s)*109.5
	default:
		return 365*100 - (640-s)*36.5
	}
}

// ValidScore reports whether score is inside the range RemainingDays accepts.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}
