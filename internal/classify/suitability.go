package classify

import (
	"math"
	"strconv"
	"strings"
)

type Suitability string

const (
	SuitabilityExcellent Suitability = "excellent"
	SuitabilityGood      Suitability = "good"
	SuitabilityModerate  Suitability = "moderate"
	SuitabilityPoor      Suitability = "poor"
)

// NormalizeSuitability keeps known labels and maps anything else to moderate.
func NormalizeSuitability(raw string) Suitability {
	switch s := Suitability(strings.ToLower(strings.TrimSpace(raw))); s {
	case SuitabilityExcellent, SuitabilityGood, SuitabilityModerate, SuitabilityPoor:
		return s
	}
	return SuitabilityModerate
}

func (s Suitability) Tier() Tier {
	switch s {
	case SuitabilityExcellent:
		return TierTop
	case SuitabilityGood:
		return TierHigh
	case SuitabilityPoor:
		return TierLow
	}
	return TierMedium
}

// ParsePercentage reads strings like "95.00%" or "95". Anything unparsable,
// non-finite or negative yields 0.
func ParsePercentage(raw string) float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
