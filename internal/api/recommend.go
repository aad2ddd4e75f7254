package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/validation"
	"agriwise-client/internal/models"
)

// RecommendLands posts the search and returns the ranked parcels in server order.
func (c *Client) RecommendLands(ctx context.Context, cred *models.Credential, p models.SearchParameters) (*models.LandRecommendations, error) {
	var out models.LandRecommendations
	elapsed, err := c.do(ctx, call{
		op:     OpRecommendLands,
		method: http.MethodPost,
		path:   pathLandRecommend,
		cred:   cred,
		auth:   true,
		body:   p,
		schema: validation.SchemaLandRecommend,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, apperrors.NewUnknownError(fmt.Errorf("land recommendation reported success=false"))
	}
	if out.Recommendations == nil {
		out.Recommendations = []models.RecommendationResult{}
	}
	out.ResponseTimeMS = elapsed.Milliseconds()
	return &out, nil
}

// RecommendCrop posts one soil sample and returns the model's suggestion.
func (c *Client) RecommendCrop(ctx context.Context, cred *models.Credential, in models.SoilClimateInput) (*models.CropRecommendationResponse, error) {
	var out models.CropRecommendationResponse
	elapsed, err := c.do(ctx, call{
		op:     OpRecommendCrop,
		method: http.MethodPost,
		path:   pathCropRecommend,
		cred:   cred,
		auth:   true,
		body:   in,
		schema: validation.SchemaCropRecommend,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if err := checkTopFive(out.Recommendation); err != nil {
		return nil, apperrors.NewMalformedResponseError(OpRecommendCrop, err)
	}
	out.ResponseTimeMS = elapsed.Milliseconds()
	return &out, nil
}

// checkTopFive enforces ordering rules the schema language cannot express.
func checkTopFive(rec models.CropRecommendation) error {
	top := rec.Top5Recommendations
	for i := 1; i < len(top); i++ {
		if top[i].Confidence > top[i-1].Confidence {
			return fmt.Errorf("top_5_recommendations not ordered at index %d (%.4f > %.4f)",
				i, top[i].Confidence, top[i-1].Confidence)
		}
	}
	if len(top) > 0 && !strings.EqualFold(strings.TrimSpace(top[0].Crop), strings.TrimSpace(rec.RecommendedCrop)) {
		return fmt.Errorf("top_5_recommendations head %q differs from recommended_crop %q",
			top[0].Crop, rec.RecommendedCrop)
	}
	return nil
}
