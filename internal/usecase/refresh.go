package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
	irepo "MarketBoard/internal/repository"
	"MarketBoard/pkg/logger"
	"MarketBoard/pkg/queue"
)

// Refresher polls the upstream market endpoint on a fixed schedule and
// pushes each snapshot to the controller, the snapshot store, the archive
// and the publisher. A failed fetch keeps the last good snapshot on screen
// and flags the error state until the next success.
type Refresher struct {
	feed       drepo.MarketFeed
	store      drepo.SnapshotStore
	archive    drepo.Archive
	publisher  drepo.SnapshotPublisher
	metrics    drepo.Metrics
	controller *ViewController
	log        *logger.Logger

	interval     time.Duration
	debounce     time.Duration
	archiveQueue queue.QueueService

	mu       sync.RWMutex
	last     *models.Snapshot
	lastErr  error
	pending  *time.Timer
	staged   []models.Instrument
	sched    *cron.Cron
}

// NewRefresher wires the refresh pipeline. archive and publisher may be nil
// when those backends are disabled.
func NewRefresher(
	feed drepo.MarketFeed,
	store drepo.SnapshotStore,
	archive drepo.Archive,
	publisher drepo.SnapshotPublisher,
	metrics drepo.Metrics,
	controller *ViewController,
	log *logger.Logger,
	interval time.Duration,
	debounce time.Duration,
) *Refresher {
	return &Refresher{
		feed:       feed,
		store:      store,
		archive:    archive,
		publisher:  publisher,
		metrics:    metrics,
		controller: controller,
		log:        log,
		interval:   interval,
		debounce:   debounce,
	}
}

// UseArchiveQueue routes archive writes through a job queue instead of
// storing inline, keeping feed latency independent of insert latency.
func (r *Refresher) UseArchiveQueue(q queue.QueueService) {
	r.archiveQueue = q
}

// Start seeds the controller from the cached snapshot, runs one immediate
// refresh and then schedules periodic ones. The seed makes the table usable
// before the first fetch completes.
func (r *Refresher) Start(ctx context.Context) error {
	if snap, err := r.store.Load(ctx); err != nil {
		r.log.Warn("snapshot cache load failed", logger.Error(err))
	} else if snap != nil {
		r.apply(snap)
		r.log.Info("seeded from cached snapshot",
			logger.Int("instruments", len(snap.Data)))
	}

	r.Refresh(ctx)

	sched := cron.New()
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := sched.AddFunc(spec, func() { r.Refresh(ctx) }); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}
	sched.Start()

	r.mu.Lock()
	r.sched = sched
	r.mu.Unlock()
	return nil
}

// Stop halts scheduling and any pending debounced apply.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.sched != nil {
		r.sched.Stop()
		r.sched = nil
	}
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.mu.Unlock()
}

// Refresh performs one fetch cycle. All downstream failures are recoverable:
// the snapshot still reaches the controller even if persisting it fails.
func (r *Refresher) Refresh(ctx context.Context) {
	start := time.Now()
	snap, err := r.feed.Fetch(ctx)
	r.metrics.RecordFetchLatency(time.Since(start).Seconds())
	if err != nil {
		r.metrics.RecordRefresh("error")
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		r.log.Error("market fetch failed, keeping last snapshot", logger.Error(err))
		return
	}

	r.metrics.RecordRefresh("ok")
	r.metrics.RecordInstrumentCount(len(snap.Data))
	for _, m := range snap.Data {
		if last, ok := m.LastRecord(); ok {
			r.metrics.RecordLastPrice(m.Symbol, last.Price)
		}
	}

	r.apply(snap)

	if err := r.store.Save(ctx, snap); err != nil {
		r.log.Warn("snapshot cache save failed", logger.Error(err))
	}
	switch {
	case r.archiveQueue != nil:
		if err := r.archiveQueue.PublishMessage(ctx, irepo.SnapshotFetchedType, snap); err != nil {
			r.log.Warn("archive enqueue failed", logger.Error(err))
		}
	case r.archive != nil:
		if err := r.archive.StoreSnapshot(ctx, snap); err != nil {
			r.log.Warn("archive store failed", logger.Error(err))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, snap); err != nil {
			r.log.Warn("snapshot publish failed", logger.Error(err))
		}
	}
}

// ApplyTick folds a live exchange row into the staged dataset. Updates are
// debounced so a burst of ticks produces one controller update.
func (r *Refresher) ApplyTick(tick models.RawTick) {
	if tick.Symbol == "" {
		return
	}
	rec := tick.Record(time.Now())

	r.mu.Lock()
	if r.staged == nil && r.last != nil {
		r.staged = cloneInstruments(r.last.Data)
	}
	found := false
	for i := range r.staged {
		if r.staged[i].Symbol == tick.Symbol {
			r.staged[i].History = append(r.staged[i].History, rec)
			r.staged[i].RawData = &tick
			found = true
			break
		}
	}
	if !found {
		r.staged = append(r.staged, models.Instrument{
			Symbol:      tick.Symbol,
			Description: tick.Description,
			RawData:     &tick,
			History:     []models.HistoryRecord{rec},
		})
	}
	r.metrics.RecordLastPrice(tick.Symbol, tick.Price)

	if r.pending == nil {
		r.pending = time.AfterFunc(r.debounce, r.flushStaged)
	}
	r.mu.Unlock()
}

func (r *Refresher) flushStaged() {
	r.mu.Lock()
	staged := r.staged
	r.staged = nil
	r.pending = nil
	if staged != nil && r.last != nil {
		r.last = &models.Snapshot{Data: staged, Count: len(staged), FetchedAt: r.last.FetchedAt}
	}
	r.mu.Unlock()

	if staged != nil {
		r.controller.SetInstruments(staged)
	}
}

// Snapshot returns the last applied snapshot, or nil before the first one.
func (r *Refresher) Snapshot() *models.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// LastError reports the most recent fetch error, cleared on success.
func (r *Refresher) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Refresher) apply(snap *models.Snapshot) {
	r.mu.Lock()
	r.last = snap
	r.lastErr = nil
	r.staged = nil
	if r.pending != nil {
		r.pending.Stop()
		r.pending = nil
	}
	r.mu.Unlock()

	r.controller.SetInstruments(snap.Data)
}

func cloneInstruments(in []models.Instrument) []models.Instrument {
	out := make([]models.Instrument, len(in))
	copy(out, in)
	for i := range out {
		hist := make([]models.HistoryRecord, len(out[i].History))
		copy(hist, out[i].History)
		out[i].History = hist
	}
	return out
}
