package availability

import (
	"iter"
	"math"
	"slices"

	"github.com/example/booking-sessions/internal/period"
)

// combine decides, for one elementary segment, whether it is available and
// which resources it carries. covering[i] is child i's period when the child
// covers the segment.
type combine func(covering []*Period) ([]string, bool)

// finished reports whether no further segment can be available given which
// children are exhausted.
type finished func(exhausted []bool) bool

type head struct {
	next    func() (Period, bool)
	stop    func()
	current Period
	done    bool
}

func (h *head) pull() {
	for {
		p, ok := h.next()
		if !ok {
			h.done = true
			return
		}
		if !p.IsEmpty() {
			h.current = p
			return
		}
	}
}

// sweep merges the children's streams into ordered, coalesced segments.
func sweep(children []Availability, rng period.Period, keep combine, stopWhen finished) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		heads := make([]*head, len(children))
		for i, child := range children {
			next, stop := iter.Pull(child.AvailablePeriods(rng))
			heads[i] = &head{next: next, stop: stop}
			defer stop()
			heads[i].pull()
		}

		exhausted := make([]bool, len(heads))
		covering := make([]*Period, len(heads))
		var pending Period
		havePending := false

		flush := func(seg Period) bool {
			if havePending && pending.End == seg.Start && slices.Equal(pending.ResourceIDs, seg.ResourceIDs) {
				pending.End = seg.End
				return true
			}
			if havePending && !yield(pending) {
				return false
			}
			pending, havePending = seg, true
			return true
		}

		t := int64(math.MaxInt64)
		for _, h := range heads {
			if !h.done {
				t = min(t, h.current.Start)
			}
		}

		for {
			for i, h := range heads {
				exhausted[i] = h.done
			}
			if stopWhen(exhausted) {
				break
			}

			// the segment [t, next) has a constant coverage
			next := int64(math.MaxInt64)
			for i, h := range heads {
				covering[i] = nil
				if h.done {
					continue
				}
				if h.current.Start > t {
					next = min(next, h.current.Start)
					continue
				}
				covering[i] = &h.current
				next = min(next, h.current.End)
			}
			if next == math.MaxInt64 {
				break
			}

			if ids, ok := keep(covering); ok && next > t {
				seg := Period{Period: period.Period{Start: t, End: next}, ResourceIDs: ids}
				if !flush(seg) {
					return
				}
			}

			for _, h := range heads {
				for !h.done && h.current.End <= next {
					h.pull()
				}
			}
			t = next
		}

		if havePending {
			yield(pending)
		}
	}
}

func allExhausted(exhausted []bool) bool {
	for _, e := range exhausted {
		if !e {
			return false
		}
	}
	return true
}

func anyExhausted(exhausted []bool) bool {
	return len(exhausted) == 0 || slices.Contains(exhausted, true)
}

func coveringIDs(covering []*Period) []string {
	sets := make([][]string, 0, len(covering))
	for _, p := range covering {
		if p != nil {
			sets = append(sets, p.ResourceIDs)
		}
	}
	return unionIDs(sets...)
}
