package availability

import (
	"iter"
	"slices"

	"github.com/example/booking-sessions/internal/period"
)

// Composite is available whenever at least one child is. Each segment
// carries the resources of every child available in it.
type Composite struct {
	children []Availability
}

// NewComposite returns the union of children.
func NewComposite(children ...Availability) *Composite {
	return &Composite{children: slices.Clone(children)}
}

// Add appends a child.
func (c *Composite) Add(child Availability) {
	c.children = append(c.children, child)
}

// Len returns the number of children.
func (c *Composite) Len() int {
	return len(c.children)
}

// AvailablePeriods implements Availability.
func (c *Composite) AvailablePeriods(rng period.Period) iter.Seq[Period] {
	return sweep(c.children, rng, func(covering []*Period) ([]string, bool) {
		for _, p := range covering {
			if p != nil {
				return coveringIDs(covering), true
			}
		}
		return nil, false
	}, allExhausted)
}

// Intersection is available only where every child is.
type Intersection struct {
	children []Availability
}

// NewIntersection returns the intersection of children. Without children
// nothing is available.
func NewIntersection(children ...Availability) *Intersection {
	return &Intersection{children: slices.Clone(children)}
}

// AvailablePeriods implements Availability.
func (a *Intersection) AvailablePeriods(rng period.Period) iter.Seq[Period] {
	return sweep(a.children, rng, func(covering []*Period) ([]string, bool) {
		if slices.Contains(covering, nil) {
			return nil, false
		}
		return coveringIDs(covering), true
	}, anyExhausted)
}

// Subtractive is the base availability minus every period of the others.
// Segments keep the base's resources.
type Subtractive struct {
	base   Availability
	others []Availability
}

// NewSubtractive returns base without the periods covered by any of others.
func NewSubtractive(base Availability, others ...Availability) *Subtractive {
	return &Subtractive{base: base, others: slices.Clone(others)}
}

// AvailablePeriods implements Availability.
func (a *Subtractive) AvailablePeriods(rng period.Period) iter.Seq[Period] {
	children := append([]Availability{a.base}, a.others...)
	return sweep(children, rng, func(covering []*Period) ([]string, bool) {
		if covering[0] == nil || slices.ContainsFunc(covering[1:], func(p *Period) bool { return p != nil }) {
			return nil, false
		}
		return covering[0].ResourceIDs, true
	}, func(exhausted []bool) bool {
		return exhausted[0]
	})
}

// Empty is never available.
var Empty = Func(func(period.Period) iter.Seq[Period] {
	return func(func(Period) bool) {}
})
