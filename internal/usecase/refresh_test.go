package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

type stubFeed struct {
	snap *models.Snapshot
	err  error
}

func (f *stubFeed) Fetch(ctx context.Context) (*models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

type stubStore struct {
	saved  *models.Snapshot
	loaded *models.Snapshot
}

func (s *stubStore) Save(ctx context.Context, snap *models.Snapshot) error {
	s.saved = snap
	return nil
}

func (s *stubStore) Load(ctx context.Context) (*models.Snapshot, error) {
	return s.loaded, nil
}

func (s *stubStore) Invalidate(ctx context.Context) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordRefresh(string)            {}
func (nopMetrics) RecordFetchLatency(float64)      {}
func (nopMetrics) RecordInstrumentCount(int)       {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordCacheEvent(string)         {}
func (nopMetrics) RecordTickEvent(string)          {}

func newTestRefresher(feed *stubFeed, store *stubStore) (*Refresher, *ViewController) {
	c := NewViewController(time.UTC, time.Minute)
	r := NewRefresher(feed, store, nil, nil, nopMetrics{}, c, testLogger(), time.Minute, 10*time.Millisecond)
	return r, c
}

func marketSnapshot() *models.Snapshot {
	data := testDataset()
	return &models.Snapshot{Data: data, Count: len(data), FetchedAt: time.Now()}
}

func TestRefreshAppliesAndPersists(t *testing.T) {
	feed := &stubFeed{snap: marketSnapshot()}
	store := &stubStore{}
	r, c := newTestRefresher(feed, store)

	r.Refresh(context.Background())

	assert.Equal(t, 4, c.View().Total)
	require.NotNil(t, store.saved)
	assert.Equal(t, 4, len(store.saved.Data))
	assert.NoError(t, r.LastError())
}

func TestFetchFailureKeepsLastSnapshot(t *testing.T) {
	feed := &stubFeed{snap: marketSnapshot()}
	store := &stubStore{}
	r, c := newTestRefresher(feed, store)

	r.Refresh(context.Background())
	require.Equal(t, 4, c.View().Total)

	feed.err = errors.New("upstream down")
	r.Refresh(context.Background())

	// The table keeps showing the previous data.
	assert.Equal(t, 4, c.View().Total)
	assert.Error(t, r.LastError())

	feed.err = nil
	r.Refresh(context.Background())
	assert.NoError(t, r.LastError())
}

func TestSeedFromCachedSnapshot(t *testing.T) {
	feed := &stubFeed{err: errors.New("upstream down")}
	store := &stubStore{loaded: marketSnapshot()}
	r, c := newTestRefresher(feed, store)

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	// Seeded data survives the failed initial fetch.
	assert.Equal(t, 4, c.View().Total)
	assert.Error(t, r.LastError())
}

func TestApplyTickDebounces(t *testing.T) {
	feed := &stubFeed{snap: marketSnapshot()}
	store := &stubStore{}
	r, c := newTestRefresher(feed, store)
	r.Refresh(context.Background())

	r.ApplyTick(models.RawTick{Symbol: "BNC", Price: 125, RelVariation: 2.0})
	r.ApplyTick(models.RawTick{Symbol: "XYZ", Description: "Nueva Emisora", Price: 10})

	// Not applied until the debounce window elapses.
	tv := c.View()
	assert.Equal(t, 4, tv.Total)

	time.Sleep(50 * time.Millisecond)

	tv = c.View()
	require.Equal(t, 5, tv.Total)
	for _, row := range tv.Rows {
		if row.Symbol == "BNC" {
			assert.Equal(t, float64(125), row.Last.Price)
		}
	}
}

func TestApplyTickIgnoresEmptySymbol(t *testing.T) {
	feed := &stubFeed{snap: marketSnapshot()}
	r, c := newTestRefresher(feed, &stubStore{})
	r.Refresh(context.Background())

	r.ApplyTick(models.RawTick{Price: 99})
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 4, c.View().Total)
}
