package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
	"MarketBoard/internal/service/marketclock"
	pkgcache "MarketBoard/pkg/cache"
)

type nopMetrics struct{}

func (nopMetrics) RecordRefresh(string)            {}
func (nopMetrics) RecordFetchLatency(float64)      {}
func (nopMetrics) RecordInstrumentCount(int)       {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordCacheEvent(string)         {}
func (nopMetrics) RecordTickEvent(string)          {}

func newSnapshotCache(t *testing.T) *SnapshotCache {
	t.Helper()
	clock, err := marketclock.New("UTC", "00:00", "09:30")
	require.NoError(t, err)
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	return NewSnapshotCache(mem, clock, nopMetrics{}, time.Hour)
}

func snapshotAt(fetched time.Time) *models.Snapshot {
	return &models.Snapshot{
		Data: []models.Instrument{{
			Symbol:      "AAA",
			Description: "AAA common stock",
			History: []models.HistoryRecord{{
				Price:      10,
				MarketTime: "10:00",
				Timestamp:  fetched.Format(time.RFC3339),
			}},
		}},
		FetchedAt: fetched,
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	sc := newSnapshotCache(t)
	ctx := context.Background()

	// Wednesday mid-session.
	fetched := time.Date(2024, time.October, 9, 14, 0, 0, 0, time.UTC)
	require.NoError(t, sc.Save(ctx, snapshotAt(fetched)))

	got, err := sc.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "AAA", got.Data[0].Symbol)
	assert.True(t, got.FetchedAt.Equal(fetched))
}

func TestSnapshotMissWhenEmpty(t *testing.T) {
	sc := newSnapshotCache(t)
	got, err := sc.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotPreOpenDiscarded(t *testing.T) {
	sc := newSnapshotCache(t)
	ctx := context.Background()

	// Wednesday 08:00 is inside the pre-open window.
	fetched := time.Date(2024, time.October, 9, 8, 0, 0, 0, time.UTC)
	require.NoError(t, sc.Save(ctx, snapshotAt(fetched)))

	got, err := sc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// And the entry is gone, not just skipped.
	got, err = sc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotInvalidate(t *testing.T) {
	sc := newSnapshotCache(t)
	ctx := context.Background()

	fetched := time.Date(2024, time.October, 9, 14, 0, 0, 0, time.UTC)
	require.NoError(t, sc.Save(ctx, snapshotAt(fetched)))
	require.NoError(t, sc.Invalidate(ctx))

	got, err := sc.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
