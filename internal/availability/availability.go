// Package availability computes when resources can be booked.
//
// An Availability yields Periods ordered by start and never overlapping one
// another. Composition (union, intersection, subtraction) is a sweep over the
// children's streams, pulled lazily with iter.Pull.
package availability

import (
	"iter"
	"slices"

	"github.com/example/booking-sessions/internal/period"
)

// Period is a span of time together with the resources available in it.
type Period struct {
	period.Period
	ResourceIDs []string
}

// Availability produces the available periods that intersect rng, clipped to
// it.
type Availability interface {
	AvailablePeriods(rng period.Period) iter.Seq[Period]
}

// Func adapts a function to the Availability interface.
type Func func(rng period.Period) iter.Seq[Period]

// AvailablePeriods implements Availability.
func (f Func) AvailablePeriods(rng period.Period) iter.Seq[Period] {
	return f(rng)
}

// Resources returns ids sorted and without duplicates.
func Resources(ids ...string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Covers reports whether every id in ids is available in p.
func (p Period) Covers(ids []string) bool {
	for _, id := range ids {
		if _, ok := slices.BinarySearch(p.ResourceIDs, id); !ok {
			return false
		}
	}
	return true
}

func unionIDs(sets ...[]string) []string {
	var all []string
	for _, set := range sets {
		all = append(all, set...)
	}
	return Resources(all...)
}

// Collect drains an availability over rng.
func Collect(a Availability, rng period.Period) []Period {
	var out []Period
	for p := range a.AvailablePeriods(rng) {
		out = append(out, p)
	}
	return out
}
