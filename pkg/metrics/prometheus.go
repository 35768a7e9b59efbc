package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	refreshTotal    *prometheus.CounterVec
	fetchLatency    prometheus.Histogram
	instrumentCount prometheus.Gauge
	lastPrice       *prometheus.GaugeVec
	cacheEvents     *prometheus.CounterVec
	tickEvents      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketboard_refresh_total",
				Help: "Total refresh attempts against the market feed",
			},
			[]string{"outcome"},
		),
		fetchLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketboard_fetch_duration_seconds",
				Help:    "Duration of market feed fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		instrumentCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketboard_instruments",
				Help: "Instruments in the last successful snapshot",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketboard_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketboard_snapshot_cache_events_total",
				Help: "Snapshot cache events by kind",
			},
			[]string{"event"},
		),
		tickEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketboard_tick_events_total",
				Help: "Live tick pipeline events by kind",
			},
			[]string{"event"},
		),
	}
}

// RecordRefresh records a refresh attempt outcome ("ok" or "error").
func (r *Recorder) RecordRefresh(outcome string) {
	r.refreshTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchLatency records feed fetch latency in seconds.
func (r *Recorder) RecordFetchLatency(seconds float64) {
	r.fetchLatency.Observe(seconds)
}

// RecordInstrumentCount records the size of the current snapshot.
func (r *Recorder) RecordInstrumentCount(n int) {
	r.instrumentCount.Set(float64(n))
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordCacheEvent records a snapshot cache event (hit, miss, stale_preopen, ...).
func (r *Recorder) RecordCacheEvent(event string) {
	r.cacheEvents.WithLabelValues(event).Inc()
}

// RecordTickEvent records a live tick pipeline event (accepted, throttled, invalid).
func (r *Recorder) RecordTickEvent(event string) {
	r.tickEvents.WithLabelValues(event).Inc()
}
