package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func TestSynthesizeOHLCSinglePointZeroVariation(t *testing.T) {
	d := day(2024, time.October, 9)
	got := SynthesizeOHLC([]models.HistoryRecord{rec(d, "09:00", 10, 0)})
	require.Len(t, got, 1)
	assert.Equal(t, 10.0, got[0].Open)
	assert.Equal(t, 10.0, got[0].Close)
	assert.Equal(t, 10.0, got[0].High)
	assert.Equal(t, 10.0, got[0].Low)
}

func TestSynthesizeOHLCUpCandle(t *testing.T) {
	d := day(2024, time.October, 9)
	records := []models.HistoryRecord{
		rec(d, "09:00", 100, 0),
		rec(d, "09:05", 110, 10),
	}
	got := SynthesizeOHLC(records)
	require.Len(t, got, 2)

	up := got[1]
	// volatility = 10/100 * 110 * 0.3 = 3.3
	assert.Equal(t, 100.0, up.Open)
	assert.Equal(t, 110.0, up.Close)
	assert.InDelta(t, 113.3, up.High, 1e-9)
	assert.InDelta(t, 98.35, up.Low, 1e-9)
}

func TestSynthesizeOHLCDownCandle(t *testing.T) {
	d := day(2024, time.October, 9)
	records := []models.HistoryRecord{
		rec(d, "09:00", 100, 0),
		rec(d, "09:05", 90, -10),
	}
	got := SynthesizeOHLC(records)
	require.Len(t, got, 2)

	down := got[1]
	// volatility = 10/100 * 90 * 0.3 = 2.7
	assert.Equal(t, 100.0, down.Open)
	assert.Equal(t, 90.0, down.Close)
	assert.InDelta(t, 101.35, down.High, 1e-9)
	assert.InDelta(t, 87.3, down.Low, 1e-9)
}

func TestSynthesizeOHLCEpochMillis(t *testing.T) {
	d := day(2024, time.October, 9)
	r := rec(d, "09:00", 10, 0)
	got := SynthesizeOHLC([]models.HistoryRecord{r})
	require.Len(t, got, 1)

	want := time.Date(2024, time.October, 9, 9, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, got[0].X)
}

func TestSynthesizeOHLCSkipsMalformedTimestamps(t *testing.T) {
	d := day(2024, time.October, 9)
	bad := rec(d, "09:02", 55, 1)
	bad.Timestamp = "broken"
	records := []models.HistoryRecord{
		rec(d, "09:00", 100, 0),
		bad,
		rec(d, "09:05", 101, 1),
	}
	got := SynthesizeOHLC(records)
	require.Len(t, got, 2)
	// Open of the last candle chains from the previous valid point.
	assert.Equal(t, 100.0, got[1].Open)
}
