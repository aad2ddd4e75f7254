package classify

import "agriwise-client/internal/models"

// ClassifiedLand is one land result with its display annotations. Level is
// always computed from Score; ServerLevel is what the service sent.
type ClassifiedLand struct {
	Rank        int
	Result      models.RecommendationResult
	Level       string
	Tier        Tier
	ServerLevel string
}

type LandView struct {
	Results        []ClassifiedLand
	ResponseTimeMS int64
	ServerTimeMS   float64
}

// Lands keeps the server's rank order and numbers results from 1.
func Lands(resp *models.LandRecommendations) *LandView {
	if resp == nil {
		return &LandView{Results: []ClassifiedLand{}}
	}
	out := make([]ClassifiedLand, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		level, tier := LandLevel(r.Score)
		out[i] = ClassifiedLand{
			Rank:        i + 1,
			Result:      r,
			Level:       level,
			Tier:        tier,
			ServerLevel: r.RecommendationLevel,
		}
	}
	return &LandView{
		Results:        out,
		ResponseTimeMS: resp.ResponseTimeMS,
		ServerTimeMS:   resp.ServerTimeMS,
	}
}

type ClassifiedAlternative struct {
	Crop          string
	ConfidencePct float64
	Tier          Tier
}

type CropView struct {
	ID              int
	RecommendedCrop string
	ConfidencePct   float64
	ConfidenceLabel string
	Tier            Tier
	Suitability     Suitability
	Alternatives    []ClassifiedAlternative
	ResponseTimeMS  int64
	ServerTimeMS    float64
}

// Crop tiers the headline on its percentage string and each alternative on
// its 0-1 confidence.
func Crop(resp *models.CropRecommendationResponse) *CropView {
	if resp == nil {
		return &CropView{Alternatives: []ClassifiedAlternative{}, Suitability: SuitabilityModerate}
	}
	rec := resp.Recommendation
	pct := ParsePercentage(rec.ConfidencePercentage)

	alts := make([]ClassifiedAlternative, len(rec.Top5Recommendations))
	for i, a := range rec.Top5Recommendations {
		p := a.Confidence * 100
		alts[i] = ClassifiedAlternative{Crop: a.Crop, ConfidencePct: p, Tier: ConfidenceTier(p)}
	}

	return &CropView{
		ID:              rec.ID,
		RecommendedCrop: rec.RecommendedCrop,
		ConfidencePct:   pct,
		ConfidenceLabel: rec.ConfidencePercentage,
		Tier:            ConfidenceTier(pct),
		Suitability:     NormalizeSuitability(rec.SoilSuitability),
		Alternatives:    alts,
		ResponseTimeMS:  resp.ResponseTimeMS,
		ServerTimeMS:    resp.ServerTimeMS,
	}
}

type HistoryItem struct {
	Entry         models.HistoryEntry
	ConfidencePct float64
	Tier          Tier
	Suitability   Suitability
}

// History annotates entries without reordering them. confidence_score (0-1)
// is used when the percentage string is absent.
func History(entries []models.HistoryEntry) []HistoryItem {
	out := make([]HistoryItem, len(entries))
	for i, e := range entries {
		pct := ParsePercentage(e.ConfidencePercentage)
		if e.ConfidencePercentage == "" {
			pct = e.ConfidenceScore * 100
		}
		out[i] = HistoryItem{
			Entry:         e,
			ConfidencePct: pct,
			Tier:          ConfidenceTier(pct),
			Suitability:   NormalizeSuitability(e.SoilSuitability),
		}
	}
	return out
}
