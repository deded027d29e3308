// Package period defines the half-open time interval shared by the rule
// engine, the availability layer and session generation.
package period

import (
	"fmt"
	"time"
)

// Period is an immutable half-open interval [Start, End) in epoch seconds.
type Period struct {
	Start int64
	End   int64
}

// New constructs a Period. An inverted pair is swapped so that End >= Start.
func New(start, end int64) Period {
	if end < start {
		start, end = end, start
	}
	return Period{Start: start, End: end}
}

// FromTimes constructs a Period from two instants.
func FromTimes(start, end time.Time) Period {
	return New(start.Unix(), end.Unix())
}

// Duration returns the length of the period in seconds.
func (p Period) Duration() int64 {
	return p.End - p.Start
}

// StartTime returns the start as a UTC time.
func (p Period) StartTime() time.Time {
	return time.Unix(p.Start, 0).UTC()
}

// EndTime returns the end as a UTC time.
func (p Period) EndTime() time.Time {
	return time.Unix(p.End, 0).UTC()
}

// IsEmpty reports whether the period has zero length.
func (p Period) IsEmpty() bool {
	return p.End == p.Start
}

// Contains reports whether ts lies inside [Start, End).
func (p Period) Contains(ts int64) bool {
	return ts >= p.Start && ts < p.End
}

// Overlaps reports whether the two periods share any instant.
func (p Period) Overlaps(other Period) bool {
	return p.Start < other.End && other.Start < p.End
}

// Clip restricts p to rng. The second result is false when nothing remains.
func (p Period) Clip(rng Period) (Period, bool) {
	start := max(p.Start, rng.Start)
	end := min(p.End, rng.End)
	if end <= start {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// Shift returns a period moved by delta seconds.
func (p Period) Shift(delta int64) Period {
	return Period{Start: p.Start + delta, End: p.End + delta}
}

// String renders the period in RFC 3339 for logs and test failures.
func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.StartTime().Format(time.RFC3339), p.EndTime().Format(time.RFC3339))
}
