package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"MarketBoard/internal/domain/models"
	"MarketBoard/internal/domain/repository"
	"MarketBoard/internal/service/marketclock"
	pkgcache "MarketBoard/pkg/cache"
)

// SnapshotKey is the cache key holding the last fetched market snapshot.
const SnapshotKey = "marketData"

// SnapshotCache persists the latest snapshot between sessions so a restart
// does not force an immediate refetch. It is advisory only: a snapshot
// captured during the exchange's pre-open window is discarded on load so
// stale intraday data is never presented as today's session.
type SnapshotCache struct {
	backend pkgcache.Service
	clock   *marketclock.Clock
	metrics repository.Metrics
	ttl     time.Duration
}

func NewSnapshotCache(backend pkgcache.Service, clock *marketclock.Clock, metrics repository.Metrics, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{backend: backend, clock: clock, metrics: metrics, ttl: ttl}
}

func (s *SnapshotCache) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.backend.Set(ctx, SnapshotKey, string(data), s.ttl); err != nil {
		return fmt.Errorf("cache snapshot: %w", err)
	}
	s.metrics.RecordCacheEvent("save")
	return nil
}

// Load returns the cached snapshot, or (nil, nil) on a miss. A snapshot
// whose fetch time falls in the pre-open window counts as a miss and is
// evicted.
func (s *SnapshotCache) Load(ctx context.Context) (*models.Snapshot, error) {
	var raw string
	if err := s.backend.Get(ctx, SnapshotKey, &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			s.metrics.RecordCacheEvent("miss")
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// A corrupt entry is treated as a miss, not an outage.
		s.metrics.RecordCacheEvent("corrupt")
		_ = s.backend.Delete(ctx, SnapshotKey)
		return nil, nil
	}

	if s.clock.InPreOpen(snap.FetchedAt) {
		s.metrics.RecordCacheEvent("stale_preopen")
		_ = s.backend.Delete(ctx, SnapshotKey)
		return nil, nil
	}

	s.metrics.RecordCacheEvent("hit")
	return &snap, nil
}

func (s *SnapshotCache) Invalidate(ctx context.Context) error {
	return s.backend.Delete(ctx, SnapshotKey)
}

var _ repository.SnapshotStore = (*SnapshotCache)(nil)
