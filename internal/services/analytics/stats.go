package analytics

import (
	"math"

	"MarketBoard/internal/domain/models"
)

// correlationEpsilon keeps the pairwise proxy's denominator away from zero.
const correlationEpsilon = 0.1

// Volatility is the population standard deviation of relative variation
// across a (condensed) history. Fewer than two points yields 0.
func Volatility(records []models.HistoryRecord) float64 {
	if len(records) < 2 {
		return 0
	}
	var sum float64
	for _, rec := range records {
		sum += rec.RelativeVariation
	}
	mean := sum / float64(len(records))

	var sq float64
	for _, rec := range records {
		d := rec.RelativeVariation - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(records)))
}

// PairwiseCorrelation is a coarse single-point similarity proxy between two
// instruments, computed from their latest relative variations as
// (v_a * v_b) / (|v_a| + |v_b| + eps) and clamped to [-1, 1]. It is NOT a
// Pearson correlation coefficient; it exists only to color a heat-map and
// must not be reused as a statistical measure. Self-correlation is 1.
func PairwiseCorrelation(a, b models.Instrument) float64 {
	if a.Symbol == b.Symbol {
		return 1
	}
	va := latestVariation(a)
	vb := latestVariation(b)
	c := (va * vb) / (math.Abs(va) + math.Abs(vb) + correlationEpsilon)
	return clamp(c, -1, 1)
}

// CorrelationMatrix builds the full symmetric proxy matrix for a selection,
// ordered as the input. The diagonal is 1.
func CorrelationMatrix(instruments []models.Instrument) [][]float64 {
	n := len(instruments)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := PairwiseCorrelation(instruments[i], instruments[j])
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}
	return matrix
}

func latestVariation(m models.Instrument) float64 {
	if last, ok := m.LastRecord(); ok {
		return last.RelativeVariation
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
