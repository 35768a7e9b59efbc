package analytics

import (
	"sort"
	"time"

	"MarketBoard/internal/domain/models"
	"MarketBoard/pkg/util"
)

// CondenseDaily collapses a chronological history to one record per past
// calendar day while keeping the current day at full intraday resolution.
// Past days keep their chronologically last record with the display label
// rewritten to dd/mm/yyyy; today's records pass through unmodified. Output
// is ascending by day, today's records in original order. Re-condensing an
// already condensed history is a no-op for past days.
func CondenseDaily(records []models.HistoryRecord, now time.Time, loc *time.Location) []models.HistoryRecord {
	if len(records) == 0 {
		return records
	}
	todayKey := util.DayKey(now, loc)

	lastPerDay := make(map[string]models.HistoryRecord)
	var today []models.HistoryRecord
	for _, rec := range records {
		t, ok := rec.Time()
		if !ok {
			continue
		}
		key := util.DayKey(t, loc)
		if key == todayKey {
			today = append(today, rec)
			continue
		}
		rec.MarketTime = t.In(loc).Format(util.DayLabelFormat)
		lastPerDay[key] = rec
	}

	days := make([]string, 0, len(lastPerDay))
	for key := range lastPerDay {
		days = append(days, key)
	}
	sort.Strings(days)

	out := make([]models.HistoryRecord, 0, len(days)+len(today))
	for _, key := range days {
		out = append(out, lastPerDay[key])
	}
	out = append(out, today...)
	return out
}

// CondenseInstruments applies CondenseDaily to every instrument's history,
// returning fresh Instrument values so the originals stay untouched.
func CondenseInstruments(instruments []models.Instrument, now time.Time, loc *time.Location) []models.Instrument {
	out := make([]models.Instrument, len(instruments))
	for i, m := range instruments {
		m.History = CondenseDaily(m.History, now, loc)
		out[i] = m
	}
	return out
}
