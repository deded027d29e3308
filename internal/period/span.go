package period

import "time"

// Span is a length of time measured partly on the calendar. Years, months and
// days are added with time.AddDate, so "5 years" lands on the same calendar
// date; Duration is added on the clock afterwards.
type Span struct {
	Years    int
	Months   int
	Days     int
	Duration time.Duration
}

// Years returns a span of n calendar years.
func Years(n int) Span { return Span{Years: n} }

// Months returns a span of n calendar months.
func Months(n int) Span { return Span{Months: n} }

// Days returns a span of n calendar days.
func Days(n int) Span { return Span{Days: n} }

// Clock returns a span of a fixed duration.
func Clock(d time.Duration) Span { return Span{Duration: d} }

// IsZero reports whether the span is empty.
func (s Span) IsZero() bool {
	return s == Span{}
}

// After returns t moved forward by the span.
func (s Span) After(t time.Time) time.Time {
	return t.AddDate(s.Years, s.Months, s.Days).Add(s.Duration)
}

// From returns the period [t, t+span).
func (s Span) From(t time.Time) Period {
	return FromTimes(t, s.After(t))
}
