package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func TestFilterRangeInclusiveWindow(t *testing.T) {
	d0 := day(2024, time.October, 7)
	d1 := day(2024, time.October, 8)
	d2 := day(2024, time.October, 9)
	records := []models.HistoryRecord{
		rec(d0, "10:00", 10, 0),
		rec(d1, "10:00", 11, 0),
		rec(d1, "14:00", 12, 0),
		rec(d2, "10:00", 13, 0),
	}

	got := FilterRange(records, models.DateRange{Start: ptr(d1), End: ptr(d1)}, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, 11.0, got[0].Price)
	assert.Equal(t, 12.0, got[1].Price)

	// Both bounds inclusive.
	got = FilterRange(records, models.DateRange{Start: ptr(d0), End: ptr(d2)}, time.UTC)
	assert.Len(t, got, 4)
}

func TestFilterRangePreservesOrder(t *testing.T) {
	d := day(2024, time.October, 8)
	records := []models.HistoryRecord{
		rec(d, "09:00", 1, 0),
		rec(d, "09:05", 2, 0),
		rec(d, "09:10", 3, 0),
	}
	got := FilterRange(records, models.DateRange{Start: ptr(d), End: ptr(d)}, time.UTC)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, float64(i+1), r.Price)
	}
}

func TestFilterRangeMissingBoundPassesThrough(t *testing.T) {
	d := day(2024, time.October, 8)
	records := []models.HistoryRecord{rec(d, "09:00", 1, 0)}

	got := FilterRange(records, models.DateRange{}, time.UTC)
	assert.Equal(t, records, got)

	got = FilterRange(records, models.DateRange{Start: ptr(d)}, time.UTC)
	assert.Equal(t, records, got)
}

func TestFilterRangeSwappedBoundsEquivalent(t *testing.T) {
	d0 := day(2024, time.October, 7)
	d2 := day(2024, time.October, 9)
	records := []models.HistoryRecord{
		rec(d0, "10:00", 10, 0),
		rec(d2, "10:00", 13, 0),
	}
	forward := FilterRange(records, models.DateRange{Start: ptr(d0), End: ptr(d2)}, time.UTC)
	swapped := FilterRange(records, models.DateRange{Start: ptr(d2), End: ptr(d0)}, time.UTC)
	assert.Equal(t, forward, swapped)
}

func TestFilterRangeMalformedTimestampExcluded(t *testing.T) {
	d := day(2024, time.October, 8)
	bad := rec(d, "09:00", 1, 0)
	bad.Timestamp = "not-a-time"
	records := []models.HistoryRecord{bad, rec(d, "09:05", 2, 0)}

	got := FilterRange(records, models.DateRange{Start: ptr(d), End: ptr(d)}, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Price)
}
