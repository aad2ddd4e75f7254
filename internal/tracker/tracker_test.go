package tracker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	history []models.HistoryEntry
	stats   *models.StatsSnapshot
	err     error
	calls   int
}

func (f *fakeFetcher) CropHistory(_ context.Context, _ *models.Credential) ([]models.HistoryEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeFetcher) CropStats(_ context.Context, _ *models.Credential) (*models.StatsSnapshot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

var cred = &models.Credential{Token: "t"}

func TestHistoryTracker_ReplacesWholesale(t *testing.T) {
	f := &fakeFetcher{history: []models.HistoryEntry{{ID: 2}, {ID: 1}}}
	h := NewHistoryTracker(f, logger.NewTestLogger(t))

	assert.Equal(t, 0, h.Count())
	assert.True(t, h.RefreshedAt().IsZero())

	got, err := h.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, ids(got))

	// the new list has no overlap with the old one; nothing is merged
	f.history = []models.HistoryEntry{{ID: 5}}
	got, err = h.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids(got))
	assert.Equal(t, 1, h.Count())
	assert.False(t, h.RefreshedAt().IsZero())
}

func TestHistoryTracker_KeepsStateOnFailure(t *testing.T) {
	f := &fakeFetcher{history: []models.HistoryEntry{{ID: 3}, {ID: 2}, {ID: 1}}}
	h := NewHistoryTracker(f, logger.NewTestLogger(t))
	_, err := h.Refresh(context.Background(), cred)
	require.NoError(t, err)

	f.err = apperrors.NewServerError(500, "down")
	got, err := h.Refresh(context.Background(), cred)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnknown(err))
	assert.Equal(t, []int{3, 2, 1}, ids(got))
	assert.Equal(t, 3, h.Count())
}

func TestHistoryTracker_EntriesAreCopies(t *testing.T) {
	f := &fakeFetcher{history: []models.HistoryEntry{{ID: 1, RecommendedCrop: "rice"}}}
	h := NewHistoryTracker(f, logger.NewNoOpLogger())
	_, err := h.Refresh(context.Background(), cred)
	require.NoError(t, err)

	// mutating the fetched slice or a returned copy leaves tracked state alone
	f.history[0].RecommendedCrop = "changed"
	e := h.Entries()
	e[0].RecommendedCrop = "also changed"
	assert.Equal(t, "rice", h.Entries()[0].RecommendedCrop)
}

func TestHistoryTracker_EmptyList(t *testing.T) {
	f := &fakeFetcher{history: []models.HistoryEntry{{ID: 1}}}
	h := NewHistoryTracker(f, logger.NewNoOpLogger())
	_, _ = h.Refresh(context.Background(), cred)

	f.history = []models.HistoryEntry{}
	got, err := h.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, h.Count())
}

func TestStatsAggregator(t *testing.T) {
	last := "2025-03-03T10:00:00Z"
	f := &fakeFetcher{stats: &models.StatsSnapshot{
		TotalRecommendations: 4,
		AvgConfidence:        81.25,
		MostRecommendedCrops: []models.CropCount{{RecommendedCrop: "rice", Count: 3}},
		LastRecommendation:   &last,
	}}
	s := NewStatsAggregator(f, logger.NewTestLogger(t))
	assert.Nil(t, s.Snapshot())

	snap, err := s.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, 4, snap.TotalRecommendations)

	snap.MostRecommendedCrops[0].Count = 100
	assert.Equal(t, 3, s.Snapshot().MostRecommendedCrops[0].Count, "snapshot is read-only")

	f.err = errors.New("boom")
	snap, err = s.Refresh(context.Background(), cred)
	require.Error(t, err)
	assert.Equal(t, 4, snap.TotalRecommendations, "previous snapshot kept")

	f.err = nil
	f.stats = &models.StatsSnapshot{TotalRecommendations: 5}
	snap, err = s.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalRecommendations)
	assert.Empty(t, snap.MostRecommendedCrops)
	assert.Nil(t, snap.LastRecommendation)
}

func ids(entries []models.HistoryEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// slowFetcher answers call n with a single entry of ID n, holding calls that
// have a gate until it is closed.
type slowFetcher struct {
	calls int32
	gates map[int32]chan struct{}
}

func (f *slowFetcher) hold(n int32) {
	if gate, ok := f.gates[n]; ok {
		<-gate
	}
}

func (f *slowFetcher) CropHistory(_ context.Context, _ *models.Credential) ([]models.HistoryEntry, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.hold(n)
	return []models.HistoryEntry{{ID: int(n)}}, nil
}

func (f *slowFetcher) CropStats(_ context.Context, _ *models.Credential) (*models.StatsSnapshot, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.hold(n)
	return &models.StatsSnapshot{TotalRecommendations: int(n)}, nil
}

func TestHistoryTracker_OlderRefreshDoesNotOverwrite(t *testing.T) {
	gate := make(chan struct{})
	f := &slowFetcher{gates: map[int32]chan struct{}{1: gate}}
	h := NewHistoryTracker(f, logger.NewTestLogger(t))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = h.Refresh(context.Background(), cred)
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) == 1 }, time.Second, time.Millisecond)

	got, err := h.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(got))

	close(gate)
	wg.Wait()
	assert.Equal(t, []int{2}, ids(h.Entries()))
}

func TestStatsAggregator_OlderRefreshDoesNotOverwrite(t *testing.T) {
	gate := make(chan struct{})
	f := &slowFetcher{gates: map[int32]chan struct{}{1: gate}}
	s := NewStatsAggregator(f, logger.NewTestLogger(t))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.Refresh(context.Background(), cred)
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&f.calls) == 1 }, time.Second, time.Millisecond)

	_, err := s.Refresh(context.Background(), cred)
	require.NoError(t, err)

	close(gate)
	wg.Wait()
	assert.Equal(t, 2, s.Snapshot().TotalRecommendations)
}
