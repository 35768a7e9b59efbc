package analytics

import (
	"fmt"
	"time"

	"MarketBoard/internal/domain/models"
)

// rec builds a record on the given day (UTC) at hh:mm with a price and
// relative variation. The display label is the intraday time.
func rec(day time.Time, hhmm string, price, relVar float64) models.HistoryRecord {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	ts := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return models.HistoryRecord{
		Price:             price,
		RelativeVariation: relVar,
		Volume:            100,
		EffectiveAmount:   price * 100,
		MarketTime:        hhmm,
		Timestamp:         ts.Format(time.RFC3339),
	}
}

func instr(symbol string, records ...models.HistoryRecord) models.Instrument {
	return models.Instrument{
		Symbol:      symbol,
		Description: fmt.Sprintf("%s common stock", symbol),
		History:     records,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }
