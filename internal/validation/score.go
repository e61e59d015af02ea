package validation

// Rating is a qualitative band over the score.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
	RatingInvalid   Rating = "invalid"
)

// Score weights. The confidence weights are spaced so that every high
// confidence result outscores every medium one, and every medium one
// outscores every low or uncertain one. The remaining weights each belong to
// one validity issue, so each issue strictly lowers the score.
const (
	weightHigh        = 50
	weightMedium      = 25
	weightLow         = 10
	weightUncertain   = 0
	weightComplete    = 15
	weightDeliverable = 15
	weightConfirmed   = 10
	weightNotInferred = 5
	weightNotReplaced = 5
)

// Score returns a deterministic 0-100 quality score.
func (r *Result) Score() int {
	return r.compute().score
}

func (r *Result) computeScore(level ConfidenceLevel) int {
	score := 0
	switch level {
	case ConfidenceHigh:
		score += weightHigh
	case ConfidenceMedium:
		score += weightMedium
	case ConfidenceLow:
		score += weightLow
	default:
		score += weightUncertain
	}

	v := r.verdict
	if v.AddressComplete {
		score += weightComplete
	}
	if r.IsDeliverable() {
		score += weightDeliverable
	}
	if !v.HasUnconfirmedComponents {
		score += weightConfirmed
	}
	if !v.HasInferredComponents {
		score += weightNotInferred
	}
	if !v.HasReplacedComponents {
		score += weightNotReplaced
	}
	return score
}

// Rating maps the score to a band.
func (r *Result) Rating() Rating {
	return RatingFor(r.Score())
}

// RatingFor maps any score to its band.
func RatingFor(score int) Rating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 50:
		return RatingFair
	case score >= 25:
		return RatingPoor
	default:
		return RatingInvalid
	}
}
