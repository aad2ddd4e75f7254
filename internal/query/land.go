package query

import (
	"context"

	"agriwise-client/internal/classify"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/metrics"
	"agriwise-client/internal/models"
	"agriwise-client/internal/params"
)

const FormLand = "land"

type LandClient interface {
	RecommendLands(ctx context.Context, cred *models.Credential, p models.SearchParameters) (*models.LandRecommendations, error)
}

// LandSearch is the land recommendation form's query state.
type LandSearch struct {
	*Machine[*classify.LandView]
	validator *params.Validator
	client    LandClient
}

func NewLandSearch(v *params.Validator, client LandClient, session CredentialSource, log logger.Logger) *LandSearch {
	return &LandSearch{
		Machine:   newMachine[*classify.LandView](FormLand, session, log),
		validator: v,
		client:    client,
	}
}

// Submit validates synchronously and then runs the search in the background.
// A validation error is returned without touching the state.
func (l *LandSearch) Submit(ctx context.Context, form params.LandForm) error {
	p, err := l.validator.Land(form)
	if err != nil {
		return l.reject(err)
	}

	return l.start(ctx, func(ctx context.Context, cred *models.Credential) (*classify.LandView, error) {
		resp, err := l.client.RecommendLands(ctx, cred, p)
		if err != nil {
			return nil, err
		}
		view := classify.Lands(resp)
		for _, r := range view.Results {
			metrics.ClassifiedResults.WithLabelValues(FormLand, r.Tier.String()).Inc()
		}
		return view, nil
	})
}
