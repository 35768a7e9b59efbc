package util

import (
	"strconv"
	"time"
)

// DayKeyFormat is the calendar-day key derived from an instant. Two records
// sharing a key belong to the same trading day.
const DayKeyFormat = "2006-01-02"

// DayLabelFormat is the display label written onto condensed past-day
// records (day/month/year).
const DayLabelFormat = "02/01/2006"

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ParseDay parses a YYYY-MM-DD calendar date in loc.
func ParseDay(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DayKeyFormat, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayKey reduces an instant to its calendar-day key in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyFormat)
}

// SameDay reports whether two instants fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// FloorDay truncates an instant to midnight of its calendar day in loc.
func FloorDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EpochMillis converts an instant to milliseconds since the epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
