// Package catalog serves crop reference data: the list of known crops and
// each crop's optimal growing conditions. Lookups go through redis when a
// cache is configured.
package catalog

import (
	"context"
	"strings"
	"time"

	"agriwise-client/internal/common/cache"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/metrics"
	"agriwise-client/internal/models"
)

const (
	keyAvailable    = "crops:available"
	keyRequirements = "crops:requirements"
)

type Fetcher interface {
	AvailableCrops(ctx context.Context) ([]string, error)
	CropRequirements(ctx context.Context, crop string) (*models.CropRequirements, error)
}

type Catalog struct {
	fetcher Fetcher
	cache   *cache.RedisClient
	ttl     time.Duration
	logger  logger.Logger
}

// New builds a catalog. A nil cache sends every lookup to the service.
func New(fetcher Fetcher, c *cache.RedisClient, ttl time.Duration, log logger.Logger) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		cache:   c,
		ttl:     ttl,
		logger:  log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

func (c *Catalog) AvailableCrops(ctx context.Context) ([]string, error) {
	var crops []string
	key := c.key(keyAvailable)
	if c.lookup(ctx, key, &crops) {
		return crops, nil
	}

	crops, err := c.fetcher.AvailableCrops(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, crops)
	return crops, nil
}

func (c *Catalog) CropRequirements(ctx context.Context, crop string) (*models.CropRequirements, error) {
	name := strings.ToLower(strings.TrimSpace(crop))
	key := c.key(keyRequirements, name)

	var req models.CropRequirements
	if name != "" && c.lookup(ctx, key, &req) {
		return &req, nil
	}

	fresh, err := c.fetcher.CropRequirements(ctx, crop)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// Invalidate drops every cached catalog entry it knows the key of.
func (c *Catalog) Invalidate(ctx context.Context, crops ...string) error {
	if c.cache == nil {
		return nil
	}
	keys := []string{c.key(keyAvailable)}
	for _, crop := range crops {
		keys = append(keys, c.key(keyRequirements, crop))
	}
	return c.cache.Del(ctx, keys...)
}

func (c *Catalog) key(parts ...string) string {
	if c.cache == nil {
		return ""
	}
	return c.cache.Key(parts...)
}

// lookup reports a hit. Cache errors count as a miss.
func (c *Catalog) lookup(ctx context.Context, key string, dst interface{}) bool {
	if c.cache == nil {
		return false
	}
	hit, err := c.cache.GetJSON(ctx, key, dst)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache read failed", map[string]interface{}{"key": key, "error": err})
		return false
	case hit:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.logger.Debug("catalog cache hit", map[string]interface{}{"key": key})
		return true
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	return false
}

func (c *Catalog) store(ctx context.Context, key string, v interface{}) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SetJSON(ctx, key, v, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
