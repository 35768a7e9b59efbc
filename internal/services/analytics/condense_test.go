package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketBoard/internal/domain/models"
)

func TestCondenseDailyPastDaysCollapse(t *testing.T) {
	past := day(2024, time.October, 7)
	today := day(2024, time.October, 9)
	now := time.Date(2024, time.October, 9, 12, 0, 0, 0, time.UTC)

	records := []models.HistoryRecord{
		rec(past, "09:00", 10, 1),
		rec(past, "15:30", 11, 2),
		rec(today, "09:00", 12, 3),
		rec(today, "09:05", 13, 4),
	}

	got := CondenseDaily(records, now, time.UTC)
	require.Len(t, got, 3)

	// Past day keeps only its last record, relabeled to dd/mm/yyyy.
	assert.Equal(t, 11.0, got[0].Price)
	assert.Equal(t, "07/10/2024", got[0].MarketTime)

	// Today keeps full intraday detail with original labels and order.
	assert.Equal(t, "09:00", got[1].MarketTime)
	assert.Equal(t, "09:05", got[2].MarketTime)
}

func TestCondenseDailyAscendingByDay(t *testing.T) {
	now := time.Date(2024, time.October, 10, 12, 0, 0, 0, time.UTC)
	records := []models.HistoryRecord{
		rec(day(2024, time.October, 7), "10:00", 1, 0),
		rec(day(2024, time.October, 8), "10:00", 2, 0),
		rec(day(2024, time.October, 9), "10:00", 3, 0),
	}
	got := CondenseDaily(records, now, time.UTC)
	require.Len(t, got, 3)
	assert.Equal(t, "07/10/2024", got[0].MarketTime)
	assert.Equal(t, "08/10/2024", got[1].MarketTime)
	assert.Equal(t, "09/10/2024", got[2].MarketTime)
}

func TestCondenseDailyIdempotentForPastDays(t *testing.T) {
	now := time.Date(2024, time.October, 9, 12, 0, 0, 0, time.UTC)
	records := []models.HistoryRecord{
		rec(day(2024, time.October, 7), "09:00", 10, 1),
		rec(day(2024, time.October, 7), "15:30", 11, 2),
		rec(day(2024, time.October, 9), "09:00", 12, 3),
	}

	once := CondenseDaily(records, now, time.UTC)
	twice := CondenseDaily(once, now, time.UTC)
	assert.Equal(t, once, twice)
}

func TestCondenseDailyEmptyAndMalformed(t *testing.T) {
	now := time.Now()
	assert.Empty(t, CondenseDaily(nil, now, time.UTC))

	bad := models.HistoryRecord{Price: 1, MarketTime: "09:00", Timestamp: "garbage"}
	got := CondenseDaily([]models.HistoryRecord{bad}, now, time.UTC)
	assert.Empty(t, got)
}

func TestCondenseInstrumentsDoesNotShareHistory(t *testing.T) {
	now := time.Date(2024, time.October, 9, 12, 0, 0, 0, time.UTC)
	orig := instr("AAA",
		rec(day(2024, time.October, 7), "09:00", 10, 1),
		rec(day(2024, time.October, 7), "15:30", 11, 2),
	)
	got := CondenseInstruments([]models.Instrument{orig}, now, time.UTC)
	require.Len(t, got, 1)
	require.Len(t, got[0].History, 1)
	// Original history untouched.
	assert.Len(t, orig.History, 2)
	assert.Equal(t, "09:00", orig.History[0].MarketTime)
}
