// Package dates provides whole-day Gregorian calendar math shared by
// the analytics pipeline. Time-of-day components are discarded.
package dates

import "time"

// Layout is the calendar date format used in every collection
const Layout = "2006-01-02"

// Midnight truncates t to the start of its calendar day in UTC
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference to minus from
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// Parse parses a YYYY-MM-DD calendar date
func Parse(s string) (time.Time, error) {
	return time.Parse(Layout, s)
}

// Format renders t as a YYYY-MM-DD calendar date
func Format(t time.Time) string {
	return t.Format(Layout)
}
