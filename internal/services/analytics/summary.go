package analytics

import (
	"time"

	"MarketBoard/internal/domain/models"
	"MarketBoard/pkg/util"
)

// TotalVolume sums the latest record's volume across the selection.
// Instruments with empty history contribute nothing.
func TotalVolume(instruments []models.Instrument) int64 {
	var total int64
	for _, m := range instruments {
		if last, ok := m.LastRecord(); ok {
			total += last.Volume
		}
	}
	return total
}

// TotalAmount sums the latest record's effective amount across the selection.
func TotalAmount(instruments []models.Instrument) float64 {
	var total float64
	for _, m := range instruments {
		if last, ok := m.LastRecord(); ok {
			total += last.EffectiveAmount
		}
	}
	return total
}

// PriceRange returns the min/max price for the view mode. All and Multiple
// modes take extrema over each selected instrument's latest record only;
// Single mode takes extrema over the focused instrument's full history.
// The asymmetry matches the dashboard's historical behavior and is kept
// deliberately (see DESIGN.md). ok is false when nothing qualifies.
func PriceRange(instruments []models.Instrument, mode models.ViewMode) (min, max float64, ok bool) {
	switch v := mode.(type) {
	case models.SingleMode:
		for _, m := range instruments {
			if m.Symbol != v.Symbol {
				continue
			}
			for _, rec := range m.History {
				min, max, ok = fold(min, max, ok, rec.Price)
			}
		}
		return min, max, ok
	case models.MultiMode:
		selected := make(map[string]struct{}, len(v.Symbols))
		for _, s := range v.Symbols {
			selected[s] = struct{}{}
		}
		for _, m := range instruments {
			if _, in := selected[m.Symbol]; !in {
				continue
			}
			if last, lok := m.LastRecord(); lok {
				min, max, ok = fold(min, max, ok, last.Price)
			}
		}
		return min, max, ok
	default: // AllMode
		for _, m := range instruments {
			if last, lok := m.LastRecord(); lok {
				min, max, ok = fold(min, max, ok, last.Price)
			}
		}
		return min, max, ok
	}
}

func fold(min, max float64, ok bool, v float64) (float64, float64, bool) {
	if !ok {
		return v, v, true
	}
	if v < min {
		min = v
	}
	if v > max {
		max = v
	}
	return min, max, true
}

// Performer pairs an instrument with its last record on a given day.
type Performer struct {
	Symbol      string               `json:"symbol"`
	Description string               `json:"description"`
	Record      models.HistoryRecord `json:"record"`
}

// TopPerformer returns the instrument whose last record on the given
// calendar day carries the highest relative variation. Instruments without
// a record on that day are excluded; ok is false when none qualify.
func TopPerformer(instruments []models.Instrument, day time.Time, loc *time.Location) (Performer, bool) {
	return performerOn(instruments, day, loc, true)
}

// WorstPerformer is TopPerformer's minimum counterpart.
func WorstPerformer(instruments []models.Instrument, day time.Time, loc *time.Location) (Performer, bool) {
	return performerOn(instruments, day, loc, false)
}

func performerOn(instruments []models.Instrument, day time.Time, loc *time.Location, best bool) (Performer, bool) {
	dayKey := util.DayKey(day, loc)
	var winner Performer
	found := false
	for _, m := range instruments {
		rec, ok := lastOnDay(m.History, dayKey, loc)
		if !ok {
			continue
		}
		if !found ||
			(best && rec.RelativeVariation > winner.Record.RelativeVariation) ||
			(!best && rec.RelativeVariation < winner.Record.RelativeVariation) {
			winner = Performer{Symbol: m.Symbol, Description: m.Description, Record: rec}
			found = true
		}
	}
	return winner, found
}

// lastOnDay finds the chronologically last record whose calendar day matches
// dayKey, relying on the history's ascending order.
func lastOnDay(records []models.HistoryRecord, dayKey string, loc *time.Location) (models.HistoryRecord, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		t, ok := records[i].Time()
		if !ok {
			continue
		}
		if util.DayKey(t, loc) == dayKey {
			return records[i], true
		}
	}
	return models.HistoryRecord{}, false
}
