// Package market answers whether the US equity market is open.
package market

import (
	"time"
	_ "time/tzdata" // America/New_York must resolve on minimal images

	"github.com/scmhub/calendar"
)

const (
	openMinute  = 9*60 + 30 // 09:30
	closeMinute = 16 * 60   // 16:00, exclusive
)

var newYork = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsOpenAt reports whether t falls on a weekday between 09:30 (inclusive)
// and 16:00 (exclusive) New York time. Holidays are ignored.
func IsOpenAt(t time.Time) bool {
	ny := t.In(newYork)
	switch ny.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := ny.Hour()*60 + ny.Minute()
	return minutes >= openMinute && minutes < closeMinute
}

// Clock evaluates market hours against the current time, optionally
// consulting the NYSE holiday calendar
type Clock struct {
	cal *calendar.Calendar
	now func() time.Time
}

// NewClock creates a clock. With holidays set, NYSE holidays count as
// closed days.
func NewClock(holidays bool) *Clock {
	c := &Clock{now: time.Now}
	if holidays {
		c.cal = calendar.GetCalendar("xnys")
	}
	return c
}

// IsOpen reports whether the market is open now
func (c *Clock) IsOpen() bool {
	return c.IsOpenAt(c.now())
}

// IsOpenAt reports whether the market is open at t
func (c *Clock) IsOpenAt(t time.Time) bool {
	if !IsOpenAt(t) {
		return false
	}
	if c.cal != nil && !c.cal.IsBusinessDay(t.In(newYork)) {
		return false
	}
	return true
}
