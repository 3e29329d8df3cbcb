package extract

// Confidence weights. They sum to 1.0, so a block with every signal
// present scores exactly 1.0. The same weighted sum is used on the
// provider-specific and fallback paths so scores are comparable across
// extraction strategies.
const (
	weightProvider    = 0.35
	weightDate        = 0.25
	weightAmount      = 0.20
	weightInstallment = 0.15
	weightAutopay     = 0.05
)

// confidenceScore computes the weighted sum over which signals were
// independently extracted.
func confidenceScore(provider, date, amount, installment, autopay bool) float64 {
	score := 0.0
	if provider {
		score += weightProvider
	}
	if date {
		score += weightDate
	}
	if amount {
		score += weightAmount
	}
	if installment {
		score += weightInstallment
	}
	if autopay {
		score += weightAutopay
	}
	return score
}
