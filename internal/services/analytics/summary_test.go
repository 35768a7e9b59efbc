package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func TestTotalsUseLatestRecords(t *testing.T) {
	d := day(2024, time.October, 9)
	a := rec(d, "09:00", 10, 0)
	a.Volume, a.EffectiveAmount = 100, 1000
	b := rec(d, "10:00", 11, 0)
	b.Volume, b.EffectiveAmount = 250, 2750
	c := rec(d, "10:00", 5, 0)
	c.Volume, c.EffectiveAmount = 40, 200

	instruments := []models.Instrument{
		instr("AAA", a, b), // only b counts
		instr("BBB", c),
		instr("CCC"), // empty history contributes nothing
	}

	assert.Equal(t, int64(290), TotalVolume(instruments))
	assert.InDelta(t, 2950, TotalAmount(instruments), 1e-9)
}

func TestPriceRangePerMode(t *testing.T) {
	d0 := day(2024, time.October, 8)
	d1 := day(2024, time.October, 9)
	aaa := instr("AAA",
		rec(d0, "10:00", 8, 0),  // historical low
		rec(d1, "10:00", 12, 0), // latest
	)
	bbb := instr("BBB",
		rec(d0, "10:00", 30, 0), // historical high
		rec(d1, "10:00", 20, 0), // latest
	)
	instruments := []models.Instrument{aaa, bbb}

	// All mode: latest-only extrema across instruments.
	min, max, ok := PriceRange(instruments, models.AllMode{})
	require.True(t, ok)
	assert.Equal(t, 12.0, min)
	assert.Equal(t, 20.0, max)

	// Multiple mode: latest-only over the selection.
	min, max, ok = PriceRange(instruments, models.MultiMode{Symbols: []string{"BBB"}})
	require.True(t, ok)
	assert.Equal(t, 20.0, min)
	assert.Equal(t, 20.0, max)

	// Single mode: full-history extrema of the focused instrument.
	min, max, ok = PriceRange(instruments, models.SingleMode{Symbol: "AAA"})
	require.True(t, ok)
	assert.Equal(t, 8.0, min)
	assert.Equal(t, 12.0, max)
}

func TestPriceRangeNothingQualifies(t *testing.T) {
	_, _, ok := PriceRange(nil, models.AllMode{})
	assert.False(t, ok)

	_, _, ok = PriceRange([]models.Instrument{instr("AAA")}, models.SingleMode{Symbol: "AAA"})
	assert.False(t, ok)

	_, _, ok = PriceRange([]models.Instrument{instr("AAA")}, models.SingleMode{Symbol: "ZZZ"})
	assert.False(t, ok)
}

func TestTopAndWorstPerformer(t *testing.T) {
	today := day(2024, time.October, 9)
	aaa := instr("AAA",
		rec(today, "09:00", 10, 5),
		rec(today, "09:05", 12, 20), // last of day, wins
	)
	bbb := instr("BBB", rec(today, "09:02", 5, -5))
	instruments := []models.Instrument{aaa, bbb}

	top, ok := TopPerformer(instruments, today, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "AAA", top.Symbol)
	assert.Equal(t, 20.0, top.Record.RelativeVariation)

	worst, ok := WorstPerformer(instruments, today, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "BBB", worst.Symbol)
	assert.Equal(t, -5.0, worst.Record.RelativeVariation)
}

func TestPerformerExcludesInstrumentsWithoutDayRecords(t *testing.T) {
	today := day(2024, time.October, 9)
	yesterday := day(2024, time.October, 8)
	instruments := []models.Instrument{
		instr("AAA", rec(yesterday, "15:00", 10, 50)), // nothing today
		instr("BBB", rec(today, "09:00", 5, 1)),
		instr("CCC"), // empty history never qualifies
	}

	top, ok := TopPerformer(instruments, today, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "BBB", top.Symbol)

	top, ok = TopPerformer(instruments, yesterday, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "AAA", top.Symbol)
}

func TestPerformerNoneQualifies(t *testing.T) {
	today := day(2024, time.October, 9)
	_, ok := TopPerformer(nil, today, time.UTC)
	assert.False(t, ok)

	_, ok = WorstPerformer([]models.Instrument{instr("AAA")}, today, time.UTC)
	assert.False(t, ok)
}
