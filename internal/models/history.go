// internal/models/history.go
package models

type HistoryEntry struct {
	ID                   int         `json:"id"`
	RecommendedCrop      string      `json:"recommended_crop"`
	ConfidenceScore      float64     `json:"confidence_score"`
	ConfidencePercentage string      `json:"confidence_percentage"`
	SoilSuitability      string      `json:"soil_suitability"`
	TopRecommendations   []CropScore `json:"top_recommendations"`
	ModelVersion         string      `json:"model_version"`
	CreatedAt            string      `json:"created_at"`
}

type CropCount struct {
	RecommendedCrop string `json:"recommended_crop"`
	Count           int    `json:"count"`
}

// StatsSnapshot is replaced wholesale on each refresh.
type StatsSnapshot struct {
	TotalRecommendations int         `json:"total_recommendations"`
	AvgConfidence        float64     `json:"avg_confidence"`
	MostRecommendedCrops []CropCount `json:"most_recommended_crops"`
	LastRecommendation   *string     `json:"last_recommendation"`
}

// Clone returns a deep copy so readers cannot mutate tracked state.
func (s *StatsSnapshot) Clone() *StatsSnapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.MostRecommendedCrops = append([]CropCount(nil), s.MostRecommendedCrops...)
	if s.LastRecommendation != nil {
		v := *s.LastRecommendation
		out.LastRecommendation = &v
	}
	return &out
}
