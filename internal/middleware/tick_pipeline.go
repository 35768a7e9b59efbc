package middleware

import (
	"fmt"
	"sync"
	"time"

	"MarketBoard/internal/domain/models"
	drepo "MarketBoard/internal/domain/repository"
)

// TickSink receives validated ticks.
type TickSink interface {
	ApplyTick(tick models.RawTick)
}

// TickPipeline sits between the exchange stream and the refresher. It
// validates each row and throttles per-symbol bursts so a noisy feed cannot
// flood the staged dataset.
type TickPipeline struct {
	sink    TickSink
	metrics drepo.Metrics
	maxRPS  int

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type PipelineOption func(*TickPipeline)

// WithMaxRPS sets the max accepted ticks per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *TickPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewTickPipeline creates a pipeline forwarding to sink.
func NewTickPipeline(sink TickSink, metrics drepo.Metrics, opts ...PipelineOption) *TickPipeline {
	p := &TickPipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and throttles one tick. Throttled ticks are dropped
// silently; invalid ones return an error for the caller to log.
func (p *TickPipeline) Process(tick models.RawTick) error {
	if err := validateTick(tick); err != nil {
		p.metrics.RecordTickEvent("invalid")
		return err
	}
	if !p.allow(tick.Symbol, time.Now()) {
		p.metrics.RecordTickEvent("throttled")
		return nil
	}
	p.sink.ApplyTick(tick)
	p.metrics.RecordTickEvent("accepted")
	return nil
}

func validateTick(t models.RawTick) error {
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Price < 0 || t.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *TickPipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
