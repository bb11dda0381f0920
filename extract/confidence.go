package extract

import "deal_hunter/models"

// Score adds 40 for an address longer than 15 characters (20 for a shorter
// one), 40 for a known price and 20 for a lot size.
func Score(f Fields) int {
	score := 0
	if f.Address != nil {
		if len(*f.Address) > 15 {
			score += 40
		} else {
			score += 20
		}
	}
	if f.Price > 0 {
		score += 40
	}
	if f.Acres != nil {
		score += 20
	}
	return score
}

func Grade(score int) models.Confidence {
	switch {
	case score >= 80:
		return models.ConfidenceHigh
	case score >= 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
