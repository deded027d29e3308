package recurrence

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// ExcludedDates is a set of calendar dates, keyed by their midnight UTC timestamp.
type ExcludedDates map[int64]struct{}

// NewExcludedDates builds a set from arbitrary timestamps. Each timestamp is
// normalized to the date that contains it.
func NewExcludedDates(timestamps ...int64) ExcludedDates {
	set := make(ExcludedDates, len(timestamps))
	for _, ts := range timestamps {
		set[DateOf(ts)] = struct{}{}
	}
	return set
}

// Contains reports whether the calendar date of ts is excluded. The time of
// day is ignored.
func (e ExcludedDates) Contains(ts int64) bool {
	if len(e) == 0 {
		return false
	}
	_, ok := e[DateOf(ts)]
	return ok
}

// Len returns the number of excluded dates.
func (e ExcludedDates) Len() int {
	return len(e)
}

// Sorted returns the excluded dates in ascending order.
func (e ExcludedDates) Sorted() []int64 {
	dates := make([]int64, 0, len(e))
	for date := range e {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	return dates
}

// ParseExcludedDates splits a comma separated list of dates. Entries may be
// YYYY-MM-DD dates, RFC 3339 timestamps or epoch seconds. Blank entries are
// dropped.
func ParseExcludedDates(list string) (ExcludedDates, error) {
	set := ExcludedDates{}
	for _, raw := range strings.Split(list, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		ts, err := parseDate(entry)
		if err != nil {
			return nil, &ConfigError{Field: "exclude_dates", Value: entry, Reason: "not a date"}
		}
		set[DateOf(ts)] = struct{}{}
	}
	return set, nil
}

func parseDate(entry string) (int64, error) {
	if t, err := time.Parse(time.DateOnly, entry); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.Parse(time.RFC3339, entry); err == nil {
		return t.Unix(), nil
	}
	return strconv.ParseInt(entry, 10, 64)
}
