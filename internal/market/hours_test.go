package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ny(t *testing.T, layout string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", layout, newYork)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestIsOpenAt(t *testing.T) {
	tests := []struct {
		name string
		at   string
		want bool
	}{
		{"monday open bell", "2025-03-03 09:30", true},
		{"monday before open", "2025-03-03 09:29", false},
		{"friday last minute", "2025-03-07 15:59", true},
		{"close is exclusive", "2025-03-07 16:00", false},
		{"saturday midday", "2025-03-08 12:00", false},
		{"sunday midday", "2025-03-09 12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenAt(ny(t, tt.at)))
		})
	}
}

func TestIsOpenAtConvertsTimezone(t *testing.T) {
	// 14:45 UTC on a March weekday after the US DST switch is 10:45 in New York
	assert.True(t, IsOpenAt(time.Date(2025, 3, 12, 14, 45, 0, 0, time.UTC)))
	// 13:45 UTC is 09:45 in New York; still open
	assert.True(t, IsOpenAt(time.Date(2025, 3, 12, 13, 45, 0, 0, time.UTC)))
	// 13:15 UTC is 09:15 in New York
	assert.False(t, IsOpenAt(time.Date(2025, 3, 12, 13, 15, 0, 0, time.UTC)))
}

func TestClockHolidays(t *testing.T) {
	// The calendar is built around the current year
	year := time.Now().Year()
	christmas := time.Date(year, 12, 25, 11, 0, 0, 0, newYork)
	if wd := christmas.Weekday(); wd == time.Saturday || wd == time.Sunday {
		t.Skip("christmas falls on a weekend this year")
	}

	plain := NewClock(false)
	assert.True(t, plain.IsOpenAt(christmas))

	withHolidays := NewClock(true)
	assert.False(t, withHolidays.IsOpenAt(christmas))

	// Second Tuesday of March is never an NYSE holiday
	tuesday := time.Date(year, 3, 1, 11, 0, 0, 0, newYork)
	for tuesday.Weekday() != time.Tuesday {
		tuesday = tuesday.AddDate(0, 0, 1)
	}
	tuesday = tuesday.AddDate(0, 0, 7)
	assert.True(t, withHolidays.IsOpenAt(tuesday))
}

func TestClockNow(t *testing.T) {
	c := NewClock(false)
	c.now = func() time.Time { return ny(t, "2025-03-04 10:00") }
	assert.True(t, c.IsOpen())
}
