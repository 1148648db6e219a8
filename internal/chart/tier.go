package chart

// Tier buckets a price into one of three severity levels. The renderer maps
// tiers to colors for both the bars and the headline price.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMid:
		return "mid"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Classify maps price to a tier given two ascending thresholds. Comparisons
// are strict, so a price exactly on a threshold lands in the higher tier.
func Classify(price, lowMax, midMax float64) Tier {
	switch {
	case price < lowMax:
		return TierLow
	case price < midMax:
		return TierMid
	default:
		return TierHigh
	}
}
