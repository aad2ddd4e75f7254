// internal/models/crop.go
package models

// SoilClimateInput is the validated soil sample sent to /api/crops/recommend/.
type SoilClimateInput struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
	Location    string  `json:"location,omitempty"`
	LandID      *int    `json:"land_id,omitempty"`
}

type CropScore struct {
	Crop       string  `json:"crop"`
	Confidence float64 `json:"confidence"`
}

type CropRecommendation struct {
	ID                   int         `json:"id,omitempty"`
	RecommendedCrop      string      `json:"recommended_crop"`
	Confidence           float64     `json:"confidence"`
	ConfidencePercentage string      `json:"confidence_percentage"`
	SoilSuitability      string      `json:"soil_suitability"`
	Top5Recommendations  []CropScore `json:"top_5_recommendations"`
}

// CropRecommendationResponse is the decoded crop response plus client timing.
type CropRecommendationResponse struct {
	Success        bool               `json:"success"`
	Recommendation CropRecommendation `json:"recommendation"`
	ServerTimeMS   float64            `json:"response_time_ms"`
	ResponseTimeMS int64              `json:"-"`
}
