package recurrence

import (
	"fmt"
	"strings"
	"time"
)

func utc(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

// DateOf returns the midnight (UTC) timestamp of the calendar date containing ts.
func DateOf(ts int64) int64 {
	y, m, d := utc(ts).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonthsOnDay moves t by n months and places it on day, clamped to the
// length of the target month. The time of day is kept.
func addMonthsOnDay(t time.Time, n int, day int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	d := min(day, daysIn(first.Year(), first.Month()))
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// nthWeekdayOfMonth returns the day of month of the nth (1-based) wd in the
// given month. ok is false when the month has no such day (e.g. a 5th Friday).
func nthWeekdayOfMonth(year int, month time.Month, nth int, wd time.Weekday) (int, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	day := 1 + (int(wd)-int(first)+7)%7 + 7*(nth-1)
	if nth < 1 || day > daysIn(year, month) {
		return 0, false
	}
	return day, true
}

// isoIndex numbers weekdays from Monday (0) to Sunday (6).
func isoIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// weekdayInWeek returns the instant on wd within the Monday-started week that
// contains t, at t's time of day.
func weekdayInWeek(t time.Time, wd time.Weekday) time.Time {
	return t.AddDate(0, 0, isoIndex(wd)-isoIndex(t.Weekday()))
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday resolves a case-insensitive weekday name or three letter abbreviation.
func ParseWeekday(name string) (time.Weekday, error) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return wd, nil
}
