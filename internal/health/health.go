package health

type ComputationMode string

const (
	ComputationAverage  ComputationMode = "average"
	ComputationWeighted ComputationMode = "weighted"
)

// ComputeWellbeing folds the three care meters, each 0-100, into one score.
// Weighted mode favors fullness and company over cleanliness.
func ComputeWellbeing(fullness, cleanliness, company float64, mode ComputationMode) int {
	var score float64

	switch mode {
	case ComputationWeighted:
		score = fullness*0.4 + cleanliness*0.2 + company*0.4
	default: // average
		score = (fullness + cleanliness + company) / 3
	}

	// Clamp to [0, 100]
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// Ratio scales part/whole onto 0-100, capped at 100.
func Ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 100
	}
	r := part / whole * 100
	if r > 100 {
		return 100
	}
	if r < 0 {
		return 0
	}
	return r
}
