package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/validation"
	"agriwise-client/internal/models"
)

// CropHistory returns the user's past recommendations, newest first as sent.
func (c *Client) CropHistory(ctx context.Context, cred *models.Credential) ([]models.HistoryEntry, error) {
	var out struct {
		Recommendations []models.HistoryEntry `json:"recommendations"`
	}
	_, err := c.do(ctx, call{
		op:     OpCropHistory,
		method: http.MethodGet,
		path:   pathCropHistory,
		cred:   cred,
		auth:   true,
		schema: validation.SchemaCropHistory,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Recommendations == nil {
		out.Recommendations = []models.HistoryEntry{}
	}
	return out.Recommendations, nil
}

func (c *Client) CropStats(ctx context.Context, cred *models.Credential) (*models.StatsSnapshot, error) {
	var out struct {
		Stats models.StatsSnapshot `json:"stats"`
	}
	_, err := c.do(ctx, call{
		op:     OpCropStats,
		method: http.MethodGet,
		path:   pathCropStats,
		cred:   cred,
		auth:   true,
		schema: validation.SchemaCropStats,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Stats.MostRecommendedCrops == nil {
		out.Stats.MostRecommendedCrops = []models.CropCount{}
	}
	return &out.Stats, nil
}

// AvailableCrops lists the crops the model knows. No credential needed.
func (c *Client) AvailableCrops(ctx context.Context) ([]string, error) {
	var out struct {
		Crops []string `json:"crops"`
	}
	_, err := c.do(ctx, call{
		op:     OpAvailableCrops,
		method: http.MethodGet,
		path:   pathCropsAvailable,
		schema: validation.SchemaCropsAvailable,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	if out.Crops == nil {
		out.Crops = []string{}
	}
	return out.Crops, nil
}

// CropRequirements returns the optimal growing ranges for one crop. No credential needed.
func (c *Client) CropRequirements(ctx context.Context, crop string) (*models.CropRequirements, error) {
	crop = strings.TrimSpace(crop)
	if crop == "" {
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{
			Field: "crop", Message: "is required", Code: "REQUIRED_FIELD_MISSING",
		}})
	}

	var out struct {
		Data models.CropRequirements `json:"data"`
	}
	_, err := c.do(ctx, call{
		op:     OpCropRequirements,
		method: http.MethodGet,
		path:   fmt.Sprintf(pathCropRequirements, url.PathEscape(crop)),
		schema: validation.SchemaCropRequirements,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}
