package query

import (
	"context"

	"agriwise-client/internal/classify"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/metrics"
	"agriwise-client/internal/models"
	"agriwise-client/internal/params"
	"agriwise-client/internal/tracker"

	"golang.org/x/sync/errgroup"
)

const FormCrop = "crop"

type CropClient interface {
	RecommendCrop(ctx context.Context, cred *models.Credential, in models.SoilClimateInput) (*models.CropRecommendationResponse, error)
}

// CropAdvisor is the crop recommendation form's query state. A successful
// recommendation refreshes history and stats once it has been published.
type CropAdvisor struct {
	*Machine[*classify.CropView]
	validator *params.Validator
	client    CropClient
	history   *tracker.HistoryTracker
	stats     *tracker.StatsAggregator
}

func NewCropAdvisor(v *params.Validator, client CropClient, history *tracker.HistoryTracker,
	stats *tracker.StatsAggregator, session CredentialSource, log logger.Logger) *CropAdvisor {
	c := &CropAdvisor{
		Machine:   newMachine[*classify.CropView](FormCrop, session, log),
		validator: v,
		client:    client,
		history:   history,
		stats:     stats,
	}
	c.refresh = c.refreshTrackers
	return c
}

func (c *CropAdvisor) Submit(ctx context.Context, form params.CropForm) error {
	in, err := c.validator.Crop(form)
	if err != nil {
		return c.reject(err)
	}

	return c.start(ctx, func(ctx context.Context, cred *models.Credential) (*classify.CropView, error) {
		resp, err := c.client.RecommendCrop(ctx, cred, in)
		if err != nil {
			return nil, err
		}
		view := classify.Crop(resp)
		metrics.ClassifiedResults.WithLabelValues(FormCrop, view.Tier.String()).Inc()
		return view, nil
	})
}

// refreshTrackers fetches history and stats side by side. Failures are logged
// and leave the published result alone.
func (c *CropAdvisor) refreshTrackers(ctx context.Context, cred *models.Credential) {
	var g errgroup.Group
	if c.history != nil {
		g.Go(func() error {
			_, err := c.history.Refresh(ctx, cred)
			return err
		})
	}
	if c.stats != nil {
		g.Go(func() error {
			_, err := c.stats.Refresh(ctx, cred)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("post-recommendation refresh incomplete", map[string]interface{}{"error": err})
	}
}

func (c *CropAdvisor) History() *tracker.HistoryTracker { return c.history }

func (c *CropAdvisor) Stats() *tracker.StatsAggregator { return c.stats }
