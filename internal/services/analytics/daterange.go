// Package analytics holds the pure transforms behind the dashboard views:
// date-range filtering, daily condensation, label-aligned series, synthetic
// OHLC, cross-instrument summaries, and coarse volatility/correlation
// estimators. Everything here is synchronous and side-effect free.
package analytics

import (
	"time"

	"MarketBoard/internal/domain/models"
	"MarketBoard/pkg/util"
)

// FilterRange returns the subsequence of records whose calendar day (in loc)
// falls inside r, inclusive. When either bound is absent the input is
// returned unchanged. Malformed timestamps never match. Input order is
// preserved and the input slice is not mutated.
func FilterRange(records []models.HistoryRecord, r models.DateRange, loc *time.Location) []models.HistoryRecord {
	if r.Start == nil || r.End == nil {
		return records
	}
	r = r.Normalized()
	startKey := util.DayKey(*r.Start, loc)
	endKey := util.DayKey(*r.End, loc)

	out := make([]models.HistoryRecord, 0, len(records))
	for _, rec := range records {
		t, ok := rec.Time()
		if !ok {
			continue
		}
		key := util.DayKey(t, loc)
		if key >= startKey && key <= endKey {
			out = append(out, rec)
		}
	}
	return out
}
