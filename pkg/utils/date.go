package utils

import (
	"math"
	"time"
)

// TimeNow is swapped out by tests that need a fixed clock.
var TimeNow = func() time.Time {
	return time.Now().UTC()
}

// TruncateDay drops the clock part of t, keeping its location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole days from `from` to `to`, rounding
// partial days down.
func DaysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// EndOfMonth returns the last calendar day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

// EndOfQuarter returns the last calendar day of t's quarter.
func EndOfQuarter(t time.Time) time.Time {
	lastMonth := ((int(t.Month())-1)/3 + 1) * 3
	return time.Date(t.Year(), time.Month(lastMonth)+1, 0, 0, 0, 0, 0, t.Location())
}

// EndOfYear returns December 31st of t's year.
func EndOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location())
}

// NextWeekday returns the first day on or after t that falls on wd.
func NextWeekday(t time.Time, wd time.Weekday) time.Time {
	day := TruncateDay(t)
	shift := (int(wd) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, shift)
}

// ISOWeekdayIndex maps Monday to 0 and Sunday to 6.
func ISOWeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
