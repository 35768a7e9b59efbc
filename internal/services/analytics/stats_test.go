package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func variations(vs ...float64) []models.HistoryRecord {
	d := day(2024, time.October, 9)
	out := make([]models.HistoryRecord, len(vs))
	for i, v := range vs {
		out[i] = rec(d, "09:00", 10, v)
	}
	return out
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.0, Volatility(nil))
	assert.Equal(t, 0.0, Volatility(variations(5))) // fewer than 2 points
	assert.Equal(t, 0.0, Volatility(variations(0, 0, 0)))
	// Population std-dev of {10, -10}: mean 0, variance 100.
	assert.InDelta(t, 10.0, Volatility(variations(10, -10)), 1e-9)
	// {1, 2, 3}: mean 2, variance 2/3.
	assert.InDelta(t, 0.816496580927726, Volatility(variations(1, 2, 3)), 1e-9)
}

func TestPairwiseCorrelationSelfIsOne(t *testing.T) {
	d := day(2024, time.October, 9)
	a := instr("AAA", rec(d, "09:00", 10, 3))
	assert.Equal(t, 1.0, PairwiseCorrelation(a, a))
}

func TestPairwiseCorrelationProxy(t *testing.T) {
	d := day(2024, time.October, 9)
	a := instr("AAA", rec(d, "09:00", 10, 2))
	b := instr("BBB", rec(d, "09:00", 5, 3))
	// (2*3)/(2+3+0.1) = 6/5.1, clamped to 1.
	assert.Equal(t, 1.0, PairwiseCorrelation(a, b))

	c := instr("CCC", rec(d, "09:00", 5, -3))
	// (2*-3)/(2+3+0.1) = -6/5.1, clamped to -1.
	assert.Equal(t, -1.0, PairwiseCorrelation(a, c))

	small := instr("DDD", rec(d, "09:00", 5, 0.1))
	// (2*0.1)/(2+0.1+0.1) = 0.2/2.2
	assert.InDelta(t, 0.2/2.2, PairwiseCorrelation(a, small), 1e-9)
}

func TestPairwiseCorrelationZeroVariationSafe(t *testing.T) {
	d := day(2024, time.October, 9)
	a := instr("AAA", rec(d, "09:00", 10, 0))
	b := instr("BBB", rec(d, "09:00", 5, 0))
	// Epsilon keeps the denominator alive; flat instruments score 0.
	assert.Equal(t, 0.0, PairwiseCorrelation(a, b))

	// Empty history behaves like zero variation.
	assert.Equal(t, 0.0, PairwiseCorrelation(a, instr("CCC")))
}

func TestCorrelationMatrix(t *testing.T) {
	d := day(2024, time.October, 9)
	instruments := []models.Instrument{
		instr("AAA", rec(d, "09:00", 10, 2)),
		instr("BBB", rec(d, "09:00", 5, 3)),
		instr("CCC", rec(d, "09:00", 7, -3)),
	}
	m := CorrelationMatrix(instruments)
	require.Len(t, m, 3)
	for i := range m {
		require.Len(t, m[i], 3)
		assert.Equal(t, 1.0, m[i][i])
		for j := range m[i] {
			assert.Equal(t, m[i][j], m[j][i])
			assert.GreaterOrEqual(t, m[i][j], -1.0)
			assert.LessOrEqual(t, m[i][j], 1.0)
		}
	}
}
