package aggregate

import "time"

// DayRange returns the half-open interval [midnight, midnight+24h)
// covering t, in t's location.
func DayRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}

// SundayWeekRange returns the half-open Sunday-to-Sunday window
// [sunday 00:00, next sunday 00:00) covering t.
//
// Note this is NOT the ISO week that keys the stored weekly summary:
// the weekly row is keyed by ISOWeekKey while its members are selected
// over this Sunday-aligned window. The two disagree near year
// boundaries and whenever Monday-start and Sunday-start weeks differ.
// The mismatch is inherited behavior and kept as is.
func SundayWeekRange(t time.Time) (start, end time.Time) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = midnight.AddDate(0, 0, -int(t.Weekday()))
	end = start.AddDate(0, 0, 7)
	return start, end
}

// MonthRange returns the closed interval [first 00:00, last 23:59:59.999…]
// covering t's calendar month. The end is inclusive; callers query with
// date <= end.
func MonthRange(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// ISOWeekKey returns the ISO-8601 week number and ISO year for t
// (Monday-start weeks, year of the week containing the first Thursday).
func ISOWeekKey(t time.Time) (week, year int) {
	year, week = t.ISOWeek()
	return week, year
}
