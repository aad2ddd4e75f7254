// Package api talks to the remote recommendation service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/config"
	httpclient "agriwise-client/internal/common/http"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/metrics"
	"agriwise-client/internal/common/observability"
	"agriwise-client/internal/common/validation"
	"agriwise-client/internal/models"
)

// Operation names, used as metric labels and log fields.
const (
	OpRecommendLands   = "land_recommend"
	OpRecommendCrop    = "crop_recommend"
	OpCropHistory      = "crop_history"
	OpCropStats        = "crop_stats"
	OpAvailableCrops   = "crops_available"
	OpCropRequirements = "crop_requirements"
	OpLogin            = "login"
)

const (
	pathLandRecommend    = "/api/lands/recommend/"
	pathCropRecommend    = "/api/crops/recommend/"
	pathCropHistory      = "/api/user/crop-recommendations/"
	pathCropStats        = "/api/crops/stats/"
	pathCropsAvailable   = "/api/crops/available/"
	pathCropRequirements = "/api/crops/%s/requirements/"
	pathLogin            = "/api/login/"
)

type Client struct {
	baseURL    string
	authScheme string
	http       *httpclient.Client
	schemas    *validation.Registry
	obs        *observability.Observability
	logger     logger.Logger
}

type Option func(*Client)

// WithHTTPClient swaps the transport, e.g. for an httptest server.
func WithHTTPClient(hc *http.Client, userAgent string) Option {
	return func(c *Client) {
		c.http = httpclient.NewClientWith(hc, userAgent)
	}
}

func WithObservability(o *observability.Observability) Option {
	return func(c *Client) {
		c.obs = o
	}
}

func WithSchemas(r *validation.Registry) Option {
	return func(c *Client) {
		c.schemas = r
	}
}

func NewClient(cfg config.APIConfig, log logger.Logger, opts ...Option) (*Client, error) {
	scheme := strings.TrimSpace(cfg.AuthScheme)
	if scheme == "" {
		scheme = "Token"
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authScheme: scheme,
		http:       httpclient.NewClient(config.GetDuration(cfg.Timeout), cfg.UserAgent),
		obs:        observability.NewNoop(),
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.schemas == nil {
		reg, err := validation.Default()
		if err != nil {
			return nil, fmt.Errorf("load response schemas: %w", err)
		}
		c.schemas = reg
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// call is one request/response exchange. out is decoded only after the body
// passes the named schema. It returns the measured round trip.
type call struct {
	op     string
	method string
	path   string
	cred   *models.Credential
	auth   bool
	body   interface{}
	schema string
	out    interface{}
}

func (c *Client) do(ctx context.Context, cl call) (time.Duration, error) {
	start := time.Now()
	elapsed, err := c.exchange(ctx, cl)
	if elapsed == 0 {
		elapsed = time.Since(start)
	}

	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apperrors.CodeOf(err)))
	}
	metrics.APIRequestsTotal.WithLabelValues(cl.op, outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(cl.op).Observe(elapsed.Seconds())
	c.obs.RecordCall(ctx, cl.op, outcome)
	c.obs.RecordRoundTrip(ctx, cl.op, elapsed)

	fields := map[string]interface{}{
		"operation": cl.op,
		"outcome":   outcome,
		"elapsedMs": elapsed.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
	}
	c.logger.Debug("api call finished", fields)

	return elapsed, err
}

func (c *Client) exchange(ctx context.Context, cl call) (time.Duration, error) {
	if cl.auth && !cl.cred.Valid() {
		return 0, apperrors.NewMissingCredentialError()
	}

	var reader *bytes.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, apperrors.NewUnknownError(fmt.Errorf("encode %s request: %w", cl.op, err))
		}
		reader = bytes.NewReader(b)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, nil)
	}
	if err != nil {
		return 0, apperrors.NewUnknownError(fmt.Errorf("build %s request: %w", cl.op, err))
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.cred.Valid() {
		req.Header.Set("Authorization", c.authScheme+" "+cl.cred.Token)
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return 0, apperrors.NewTransportError(err)
	}

	if stdErr := mapStatus(resp.StatusCode, resp.Body); stdErr != nil {
		return resp.Duration, stdErr.WithMetadata("requestId", resp.RequestID)
	}

	result, err := c.schemas.ValidateBytes(cl.schema, resp.Body)
	if err != nil {
		return resp.Duration, apperrors.NewUnknownError(err)
	}
	if !result.Valid {
		return resp.Duration, apperrors.NewMalformedResponseError(cl.op, result.Err()).
			WithMetadata("requestId", resp.RequestID)
	}

	if err := json.Unmarshal(resp.Body, cl.out); err != nil {
		return resp.Duration, apperrors.NewMalformedResponseError(cl.op, err)
	}
	return resp.Duration, nil
}
