package utils

import "time"

const DateFormat = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date in the local time zone.
func ParseDate(dateStr string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, dateStr, time.Local)
}

// StartOfDay returns local midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns local midnight of the most recent Sunday, counting t
// itself when t falls on a Sunday.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// StartOfMonth returns local midnight of the 1st of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns local midnight of Jan 1 of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 local time of t's day, so inclusive range
// ends cover the whole calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}
