package marketclock

import (
	"fmt"
	"time"

	"MarketBoard/pkg/util"
)

// Clock anchors all calendar-day math to the exchange's timezone and knows
// the pre-open window used for cache invalidation.
type Clock struct {
	loc          *time.Location
	preOpenStart int // minutes from midnight
	preOpenEnd   int
	nowFn        func() time.Time
}

// New builds a Clock for the given IANA timezone and an HH:MM pre-open
// window (start inclusive, end exclusive).
func New(tz, preOpenStart, preOpenEnd string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	start, err := parseClock(preOpenStart)
	if err != nil {
		return nil, fmt.Errorf("pre-open start: %w", err)
	}
	end, err := parseClock(preOpenEnd)
	if err != nil {
		return nil, fmt.Errorf("pre-open end: %w", err)
	}
	return &Clock{loc: loc, preOpenStart: start, preOpenEnd: end, nowFn: time.Now}, nil
}

// WithNow overrides the time source. Test hook.
func (c *Clock) WithNow(fn func() time.Time) *Clock {
	c.nowFn = fn
	return c
}

// Location is the exchange timezone.
func (c *Clock) Location() *time.Location { return c.loc }

// Now is the current instant in the exchange timezone.
func (c *Clock) Now() time.Time { return c.nowFn().In(c.loc) }

// Today is midnight of the current exchange calendar day.
func (c *Clock) Today() time.Time { return util.FloorDay(c.Now(), c.loc) }

// Yesterday is midnight of the previous exchange calendar day.
func (c *Clock) Yesterday() time.Time { return c.Today().AddDate(0, 0, -1) }

// InPreOpen reports whether t falls inside the pre-open window of an
// exchange weekday. Snapshots captured there predate the session and are
// discarded rather than shown as live data.
func (c *Clock) InPreOpen(t time.Time) bool {
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := local.Hour()*60 + local.Minute()
	return minutes >= c.preOpenStart && minutes < c.preOpenEnd
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
