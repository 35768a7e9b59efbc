package models

import (
	"time"

	"MarketBoard/pkg/util"
)

// HistoryRecord is one time-stamped market observation for an instrument.
// Records arrive chronologically ascending from the feed; consumers rely on
// that ordering without re-verifying it.
type HistoryRecord struct {
	Price             float64 `json:"price"`
	AbsoluteVariation float64 `json:"absolute_variation"`
	RelativeVariation float64 `json:"relative_variation"` // percent
	Volume            int64   `json:"volume"`
	EffectiveAmount   float64 `json:"effective_amount"`
	MarketTime        string  `json:"market_time"` // display label (intraday time or dd/mm/yyyy)
	Timestamp         string  `json:"timestamp"`   // ISO-8601 instant
}

// Time parses the record's timestamp. ok is false for malformed values,
// which filters treat as non-matching rather than fatal.
func (r HistoryRecord) Time() (time.Time, bool) {
	return util.ParseTime(r.Timestamp)
}

// RawTick mirrors an upstream exchange row. Field names follow the feed's
// wire format.
type RawTick struct {
	Description     string  `json:"DESC_SIMB"`
	Symbol          string  `json:"COD_SIMB"`
	Price           float64 `json:"PRECIO"`
	AbsVariation    float64 `json:"VAR_ABS"`
	RelVariation    float64 `json:"VAR_REL"`
	Volume          int64   `json:"VOLUMEN"`
	EffectiveAmount float64 `json:"MONTO_EFECTIVO"`
	MarketTime      string  `json:"HORA"`
}

// Record converts a raw tick into a HistoryRecord stamped at ts.
func (t RawTick) Record(ts time.Time) HistoryRecord {
	return HistoryRecord{
		Price:             t.Price,
		AbsoluteVariation: t.AbsVariation,
		RelativeVariation: t.RelVariation,
		Volume:            t.Volume,
		EffectiveAmount:   t.EffectiveAmount,
		MarketTime:        t.MarketTime,
		Timestamp:         ts.Format(time.RFC3339),
	}
}

// Instrument is a traded symbol with its snapshot history. History grows by
// append only as snapshots arrive from the feed.
type Instrument struct {
	Symbol      string          `json:"symbol"`
	Description string          `json:"description"`
	Timestamp   string          `json:"timestamp"`
	RawData     *RawTick        `json:"raw_data,omitempty"`
	History     []HistoryRecord `json:"history"`
}

// LastRecord returns the latest history record, or ok=false when the history
// is empty.
func (m Instrument) LastRecord() (HistoryRecord, bool) {
	if len(m.History) == 0 {
		return HistoryRecord{}, false
	}
	return m.History[len(m.History)-1], true
}

// Snapshot is the upstream feed payload: the full instrument collection.
type Snapshot struct {
	Data      []Instrument `json:"data"`
	Count     int          `json:"count,omitempty"`
	FetchedAt time.Time    `json:"fetched_at,omitempty"`
}

// Metric selects which HistoryRecord field a chart series is built from.
type Metric string

const (
	MetricPrice           Metric = "price"
	MetricVolume          Metric = "volume"
	MetricRelVariation    Metric = "relative_variation"
	MetricEffectiveAmount Metric = "effective_amount"
)

// Value extracts the metric from a record.
func (m Metric) Value(r HistoryRecord) float64 {
	switch m {
	case MetricVolume:
		return float64(r.Volume)
	case MetricRelVariation:
		return r.RelativeVariation
	case MetricEffectiveAmount:
		return r.EffectiveAmount
	default:
		return r.Price
	}
}

// Valid reports whether m names a known metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricPrice, MetricVolume, MetricRelVariation, MetricEffectiveAmount:
		return true
	}
	return false
}
