package recurrence

import "time"

// Yearly repeats every N years on the seed's month and day. A Feb 29 seed
// lands on Feb 28 in common years.
type Yearly struct {
	cursor
	day int
}

// NewYearly returns a yearly rule positioned on its seed.
func NewYearly(pattern Pattern) *Yearly {
	r := &Yearly{day: pattern.First.StartTime().Day()}
	r.cursor = newCursor(pattern, r.next)
	return r
}

func (r *Yearly) next(ts int64) int64 {
	t := utc(ts)
	year := t.Year() + r.pattern.Frequency()
	day := min(r.day, daysIn(year, t.Month()))
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
}
