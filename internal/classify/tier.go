// Package classify annotates raw service payloads with display tiers. Every
// function here is pure and keeps the input order.
package classify

// Tier is a four-step severity bucket shared by land levels and crop confidence.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
	TierTop
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	}
	return "low"
}

// Land recommendation levels.
const (
	LevelHighlyRecommended = "Highly Recommended"
	LevelRecommended       = "Recommended"
	LevelConsider          = "Consider"
	LevelNotRecommended    = "Not Recommended"
)

// Lower bounds are inclusive.
const (
	landTopMin    = 85.0
	landHighMin   = 70.0
	landMediumMin = 55.0

	cropTopMin    = 80.0
	cropHighMin   = 60.0
	cropMediumMin = 40.0
)

// LandLevel maps a 0-100 score to its label and tier. Scores outside the range
// still land in the nearest bucket.
func LandLevel(score float64) (string, Tier) {
	switch {
	case score >= landTopMin:
		return LevelHighlyRecommended, TierTop
	case score >= landHighMin:
		return LevelRecommended, TierHigh
	case score >= landMediumMin:
		return LevelConsider, TierMedium
	}
	return LevelNotRecommended, TierLow
}

// ConfidenceTier buckets a 0-100 confidence.
func ConfidenceTier(pct float64) Tier {
	switch {
	case pct >= cropTopMin:
		return TierTop
	case pct >= cropHighMin:
		return TierHigh
	case pct >= cropMediumMin:
		return TierMedium
	}
	return TierLow
}
