package repository

import (
	"context"
	"time"

	"MarketBoard/internal/domain/models"
)

// MarketFeed is the upstream read-only source of the instrument collection.
type MarketFeed interface {
	Fetch(ctx context.Context) (*models.Snapshot, error)
}

// TickStream is an optional live feed of raw exchange rows between polls.
type TickStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.RawTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Archive persists fetched history records for later range queries. The
// in-memory snapshot stays the source of truth; the archive is append-only.
type Archive interface {
	Init(ctx context.Context) error
	StoreSnapshot(ctx context.Context, snap *models.Snapshot) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// SnapshotPublisher fans refreshed snapshots out to downstream consumers.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

// SnapshotStore caches the last fetched snapshot between sessions.
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Load(ctx context.Context) (*models.Snapshot, error)
	Invalidate(ctx context.Context) error
}

// Metrics records operational counters for the refresh and API paths.
type Metrics interface {
	RecordRefresh(outcome string)
	RecordFetchLatency(seconds float64)
	RecordInstrumentCount(n int)
	RecordLastPrice(symbol string, price float64)
	RecordCacheEvent(event string)
	RecordTickEvent(event string)
}
