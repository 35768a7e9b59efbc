package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func TestAlignSeriesTwoInstruments(t *testing.T) {
	d := day(2024, time.October, 9)
	aaa := instr("AAA",
		rec(d, "09:00", 10, 5),
		rec(d, "09:05", 12, 20),
	)
	bbb := instr("BBB",
		rec(d, "09:02", 5, -5),
	)

	got := AlignSeries([]models.Instrument{aaa, bbb}, models.MetricPrice)
	require.Equal(t, []string{"09:00", "09:02", "09:05"}, got.Labels)
	require.Len(t, got.Series, 2)

	a := got.Series[0]
	assert.Equal(t, "AAA", a.Symbol)
	require.Len(t, a.Values, 3)
	require.NotNil(t, a.Values[0])
	assert.Equal(t, 10.0, *a.Values[0])
	assert.Nil(t, a.Values[1])
	require.NotNil(t, a.Values[2])
	assert.Equal(t, 12.0, *a.Values[2])

	b := got.Series[1]
	assert.Equal(t, "BBB", b.Symbol)
	assert.Nil(t, b.Values[0])
	require.NotNil(t, b.Values[1])
	assert.Equal(t, 5.0, *b.Values[1])
	assert.Nil(t, b.Values[2])
}

func TestAlignSeriesUniformLength(t *testing.T) {
	d := day(2024, time.October, 9)
	instruments := []models.Instrument{
		instr("AAA", rec(d, "09:00", 1, 0), rec(d, "09:10", 2, 0)),
		instr("BBB", rec(d, "09:05", 3, 0)),
		instr("CCC"),
	}
	got := AlignSeries(instruments, models.MetricVolume)
	for _, s := range got.Series {
		assert.Len(t, s.Values, len(got.Labels))
	}
}

func TestAlignSeriesDuplicateLabelLastWins(t *testing.T) {
	d := day(2024, time.October, 9)
	first := rec(d, "09:00", 10, 0)
	second := rec(d, "09:00", 99, 0)
	got := AlignSeries([]models.Instrument{instr("AAA", first, second)}, models.MetricPrice)
	require.Equal(t, []string{"09:00"}, got.Labels)
	require.NotNil(t, got.Series[0].Values[0])
	assert.Equal(t, 99.0, *got.Series[0].Values[0])
}

func TestAlignSeriesMetricSelection(t *testing.T) {
	d := day(2024, time.October, 9)
	r := rec(d, "09:00", 10, -2.5)
	r.Volume = 740
	r.EffectiveAmount = 812.5
	m := instr("AAA", r)

	byMetric := map[models.Metric]float64{
		models.MetricPrice:           10,
		models.MetricVolume:          740,
		models.MetricRelVariation:    -2.5,
		models.MetricEffectiveAmount: 812.5,
	}
	for metric, want := range byMetric {
		got := AlignSeries([]models.Instrument{m}, metric)
		require.NotNil(t, got.Series[0].Values[0], metric)
		assert.Equal(t, want, *got.Series[0].Values[0], metric)
	}
}

func TestAlignSeriesEmptyInput(t *testing.T) {
	got := AlignSeries(nil, models.MetricPrice)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.Series)
}

func TestAlignSeriesDeterministicLabels(t *testing.T) {
	d := day(2024, time.October, 9)
	instruments := []models.Instrument{
		instr("AAA", rec(d, "09:07", 1, 0), rec(d, "09:01", 2, 0)),
		instr("BBB", rec(d, "09:03", 3, 0)),
	}
	first := AlignSeries(instruments, models.MetricPrice)
	second := AlignSeries(instruments, models.MetricPrice)
	assert.Equal(t, first.Labels, second.Labels)
	assert.Equal(t, []string{"09:01", "09:03", "09:07"}, first.Labels)
}
