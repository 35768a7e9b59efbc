package analytics

import (
	"math"

	"MarketBoard/internal/domain/models"
	"MarketBoard/pkg/util"
)

// Candle is one synthetic open/high/low/close tuple. X is the record's
// timestamp in epoch milliseconds.
type Candle struct {
	X     int64   `json:"x"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// SynthesizeOHLC derives candles from a chronological history. The feed has
// no true intraday OHLC, so the band is approximated from each record's
// relative variation: these candles are synthetic and must not be read as
// real trade ranges.
//
// For point i: close = price[i], open = price[i-1] (price[i] at i = 0), and
// volatility = |rel_var|/100 * price * 0.3. An up candle gets
// high = close + volatility, low = open - volatility/2; a down candle gets
// high = open + volatility/2, low = close - volatility. A single point with
// zero variation collapses to a flat candle. Records with malformed
// timestamps are skipped.
func SynthesizeOHLC(records []models.HistoryRecord) []Candle {
	out := make([]Candle, 0, len(records))
	prevPrice := 0.0
	first := true
	for _, rec := range records {
		t, ok := rec.Time()
		if !ok {
			continue
		}
		open := rec.Price
		if !first {
			open = prevPrice
		}
		c := Candle{
			X:     util.EpochMillis(t),
			Open:  open,
			Close: rec.Price,
		}
		vol := math.Abs(rec.RelativeVariation) / 100 * rec.Price * 0.3
		if c.Close >= c.Open {
			c.High = c.Close + vol
			c.Low = c.Open - vol/2
		} else {
			c.High = c.Open + vol/2
			c.Low = c.Close - vol
		}
		out = append(out, c)
		prevPrice = rec.Price
		first = false
	}
	return out
}
