// Package tracker keeps the user's crop history and statistics in step with
// the service. Both are replaced wholesale on refresh and never merged. A
// refresh that started before the one last applied is dropped on arrival.
package tracker

import (
	"context"
	"sync"
	"time"

	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"
)

// HistoryFetcher is the slice of the api client the history tracker needs.
type HistoryFetcher interface {
	CropHistory(ctx context.Context, cred *models.Credential) ([]models.HistoryEntry, error)
}

// StatsFetcher is the slice of the api client the stats aggregator needs.
type StatsFetcher interface {
	CropStats(ctx context.Context, cred *models.Credential) (*models.StatsSnapshot, error)
}

type HistoryTracker struct {
	mu          sync.RWMutex
	entries     []models.HistoryEntry
	refreshedAt time.Time
	started     uint64
	applied     uint64
	fetcher     HistoryFetcher
	logger      logger.Logger
}

func NewHistoryTracker(fetcher HistoryFetcher, log logger.Logger) *HistoryTracker {
	return &HistoryTracker{
		entries: []models.HistoryEntry{},
		fetcher: fetcher,
		logger:  log.WithFields(map[string]interface{}{"component": "history"}),
	}
}

// Refresh replaces the tracked list with the server's. On failure the
// previous list stays and the error is returned.
func (h *HistoryTracker) Refresh(ctx context.Context, cred *models.Credential) ([]models.HistoryEntry, error) {
	h.mu.Lock()
	h.started++
	ticket := h.started
	h.mu.Unlock()

	entries, err := h.fetcher.CropHistory(ctx, cred)
	if err != nil {
		h.logger.Warn("history refresh failed", map[string]interface{}{"error": err})
		return h.Entries(), err
	}

	fresh := append([]models.HistoryEntry(nil), entries...)
	h.mu.Lock()
	if ticket < h.applied {
		h.mu.Unlock()
		h.logger.Debug("dropping outdated history", map[string]interface{}{"ticket": ticket})
		return h.Entries(), nil
	}
	h.entries = fresh
	h.applied = ticket
	h.refreshedAt = time.Now()
	h.mu.Unlock()

	h.logger.Debug("history refreshed", map[string]interface{}{"count": len(fresh)})
	return h.Entries(), nil
}

// Entries returns a copy in server order.
func (h *HistoryTracker) Entries() []models.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]models.HistoryEntry{}, h.entries...)
}

func (h *HistoryTracker) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// RefreshedAt is zero until the first successful refresh.
func (h *HistoryTracker) RefreshedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.refreshedAt
}

type StatsAggregator struct {
	mu       sync.RWMutex
	snapshot *models.StatsSnapshot
	started  uint64
	applied  uint64
	fetcher  StatsFetcher
	logger   logger.Logger
}

func NewStatsAggregator(fetcher StatsFetcher, log logger.Logger) *StatsAggregator {
	return &StatsAggregator{
		fetcher: fetcher,
		logger:  log.WithFields(map[string]interface{}{"component": "stats"}),
	}
}

// Refresh swaps in the server's snapshot. On failure the previous snapshot stays.
func (s *StatsAggregator) Refresh(ctx context.Context, cred *models.Credential) (*models.StatsSnapshot, error) {
	s.mu.Lock()
	s.started++
	ticket := s.started
	s.mu.Unlock()

	snap, err := s.fetcher.CropStats(ctx, cred)
	if err != nil {
		s.logger.Warn("stats refresh failed", map[string]interface{}{"error": err})
		return s.Snapshot(), err
	}

	fresh := snap.Clone()
	s.mu.Lock()
	if ticket < s.applied {
		s.mu.Unlock()
		s.logger.Debug("dropping outdated stats", map[string]interface{}{"ticket": ticket})
		return s.Snapshot(), nil
	}
	s.snapshot = fresh
	s.applied = ticket
	s.mu.Unlock()

	s.logger.Debug("stats refreshed", map[string]interface{}{"total": fresh.TotalRecommendations})
	return s.Snapshot(), nil
}

// Snapshot returns a copy, or nil before the first successful refresh.
func (s *StatsAggregator) Snapshot() *models.StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone()
}
