package render

import (
	"bytes"
	"strings"
	"testing"

	"agriwise-client/internal/classify"
	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestLands_KeepsOrder(t *testing.T) {
	var buf bytes.Buffer
	view := classify.Lands(&models.LandRecommendations{
		Success: true,
		Recommendations: []models.RecommendationResult{
			{LandID: 4, Name: "North Field", City: "Pune", Score: 60, TotalPrice: 2500000},
			{LandID: 9, Score: 92, Concerns: []string{"far from market"}},
		},
		ResponseTimeMS: 42,
	})

	New(&buf).Lands(view)
	out := buf.String()

	assert.Contains(t, out, "Found 2 Recommendations")
	assert.Contains(t, out, "Response time: 42ms")
	assert.Contains(t, out, "2,500,000")
	assert.Contains(t, out, "far from market")
	first := strings.Index(out, "North Field")
	second := strings.Index(out, "Land 9")
	assert.True(t, first >= 0 && second > first, "results must print in server order")
	assert.Contains(t, out, classify.LevelConsider)
	assert.Contains(t, out, classify.LevelHighlyRecommended)
}

func TestLands_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Lands(classify.Lands(&models.LandRecommendations{Success: true}))
	assert.Contains(t, buf.String(), "No lands found")
}

func TestCrop(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Crop(&classify.CropView{
		RecommendedCrop: "rice",
		ConfidencePct:   95,
		Tier:            classify.TierTop,
		Suitability:     classify.SuitabilityExcellent,
		Alternatives: []classify.ClassifiedAlternative{
			{Crop: "rice", ConfidencePct: 95, Tier: classify.TierTop},
			{Crop: "jute", ConfidencePct: 4.5, Tier: classify.TierLow},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "RICE")
	assert.Contains(t, out, "95.00%")
	assert.Contains(t, out, "excellent")
	assert.Contains(t, out, "2. jute")
}

func TestHistoryAndStats(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.History(classify.History([]models.HistoryEntry{
		{RecommendedCrop: "maize", ConfidencePercentage: "71.00%"},
		{RecommendedCrop: "rice", ConfidenceScore: 0.9},
	}))
	last := "2025-03-03T10:00:00Z"
	r.Stats(&models.StatsSnapshot{
		TotalRecommendations: 2,
		AvgConfidence:        80.5,
		MostRecommendedCrops: []models.CropCount{{RecommendedCrop: "rice", Count: 1}},
		LastRecommendation:   &last,
	})

	out := buf.String()
	assert.Contains(t, out, "My History (2)")
	assert.Contains(t, out, "71.00%")
	assert.Contains(t, out, "90.00%")
	assert.Contains(t, out, "Total Recommendations")
	assert.Contains(t, out, "80.50%")
	assert.Contains(t, out, "rice (1)")
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.History(nil)
	r.Stats(nil)
	assert.Contains(t, buf.String(), "My History (0)")
	assert.NotContains(t, buf.String(), "Total Recommendations")
}

func TestError_Dispositions(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Error(apperrors.NewValidationError([]apperrors.FieldError{{Field: "ph", Message: "must be between 0 and 14"}}),
		apperrors.DispositionInline)
	r.Error(apperrors.NewAuthError(401, ""), apperrors.DispositionReauthenticate)
	r.Error(apperrors.NewRequestError(400, "Invalid purpose"), apperrors.DispositionBanner)
	r.Error(nil, apperrors.DispositionBanner)

	out := buf.String()
	assert.Contains(t, out, "ph: must be between 0 and 14")
	assert.Contains(t, out, "Please log in")
	assert.Contains(t, out, "Invalid purpose")
}

func TestCatalogViews(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)
	r.Crops([]string{"maize", "rice"})
	r.Requirements(&models.CropRequirements{
		CropName:     "rice",
		SamplesCount: 100,
		OptimalConditions: map[string]models.ConditionRange{
			"ph": {Min: 5.01, Max: 7.87, Avg: 6.42},
			"N":  {Min: 60, Max: 99, Avg: 79.89},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "All Crops (2)")
	assert.Contains(t, out, "Optimal conditions for rice")
	assert.Contains(t, out, "6.42")
	assert.Less(t, strings.Index(out, "N "), strings.Index(out, "ph "))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "0", money(0))
	assert.Equal(t, "999", money(999))
	assert.Equal(t, "1,000", money(1000))
	assert.Equal(t, "100,000,000", money(1e8))
	assert.Equal(t, "-12,345", money(-12345))
}
