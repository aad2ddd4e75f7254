// internal/models/land.go
package models

import "strings"

// Purpose is the intended land use. The zero value means "any" and is left
// off the wire.
type Purpose string

const (
	PurposeAny          Purpose = ""
	PurposeAgricultural Purpose = "agricultural"
	PurposeResidential  Purpose = "residential"
	PurposeCommercial   Purpose = "commercial"
	PurposeIndustrial   Purpose = "industrial"
	PurposeMixed        Purpose = "mixed"
)

var knownPurposes = map[Purpose]bool{
	PurposeAgricultural: true,
	PurposeResidential:  true,
	PurposeCommercial:   true,
	PurposeIndustrial:   true,
	PurposeMixed:        true,
}

// ParsePurpose is case-insensitive; "" and "any" map to PurposeAny.
func ParsePurpose(raw string) (Purpose, bool) {
	p := Purpose(strings.ToLower(strings.TrimSpace(raw)))
	if p == PurposeAny || p == "any" {
		return PurposeAny, true
	}
	return p, knownPurposes[p]
}

func (p Purpose) String() string {
	if p == PurposeAny {
		return "any"
	}
	return string(p)
}

// SearchParameters is the validated land query sent to /api/lands/recommend/.
type SearchParameters struct {
	Purpose                  Purpose `json:"purpose,omitempty"`
	MinSize                  float64 `json:"min_size"`
	MaxSize                  float64 `json:"max_size"`
	MinPrice                 float64 `json:"min_price"`
	MaxPrice                 float64 `json:"max_price"`
	LocationPreference       string  `json:"location_preference"`
	ConnectivityImportance   float64 `json:"connectivity_importance"`
	InfrastructureImportance float64 `json:"infrastructure_importance"`
	Limit                    int     `json:"limit"`
}

// RecommendationResult is one scored land parcel as returned by the service.
type RecommendationResult struct {
	LandID              int                `json:"land_id"`
	Name                string             `json:"name"`
	City                string             `json:"city"`
	Latitude            *float64           `json:"latitude,omitempty"`
	Longitude           *float64           `json:"longitude,omitempty"`
	SizeInAcres         float64            `json:"size_in_acres"`
	TotalPrice          float64            `json:"total_price"`
	PricePerAcre        float64            `json:"price_per_acre"`
	Score               float64            `json:"score"`
	Subscores           map[string]float64 `json:"subscores"`
	RecommendationLevel string             `json:"recommendation_level"`
	MatchingFeatures    []string           `json:"matching_features"`
	Concerns            []string           `json:"concerns"`
}

// LandRecommendations is the decoded land response plus client timing.
type LandRecommendations struct {
	Success         bool                   `json:"success"`
	Recommendations []RecommendationResult `json:"recommendations"`
	ServerTimeMS    float64                `json:"response_time_ms"`
	ResponseTimeMS  int64                  `json:"-"`
}
