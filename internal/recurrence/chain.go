package recurrence

import (
	"iter"
	"slices"

	"github.com/example/booking-sessions/internal/period"
)

// Chain concatenates rules into one occurrence stream: every occurrence of
// the first rule, then every occurrence of the second, and so on. The
// combined stream is not ordered by start across rules.
type Chain struct {
	rules []Rule
	idx   int
}

// NewChain returns a chain positioned on the first available occurrence.
func NewChain(rules ...Rule) *Chain {
	c := &Chain{rules: slices.Clone(rules)}
	c.Rewind()
	return c
}

// Rules returns the chained rules in order.
func (c *Chain) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Rewind implements Rule.
func (c *Chain) Rewind() {
	c.idx = 0
	if len(c.rules) > 0 {
		c.rules[0].Rewind()
	}
	c.settle()
}

// Valid implements Rule.
func (c *Chain) Valid() bool {
	return c.idx < len(c.rules)
}

// Current implements Rule.
func (c *Chain) Current() period.Period {
	if !c.Valid() {
		return period.Period{}
	}
	return c.rules[c.idx].Current()
}

// Advance implements Rule.
func (c *Chain) Advance() {
	if !c.Valid() {
		return
	}
	c.rules[c.idx].Advance()
	c.settle()
}

// settle skips past exhausted rules, rewinding each rule as it is entered.
func (c *Chain) settle() {
	for c.idx < len(c.rules) && !c.rules[c.idx].Valid() {
		c.idx++
		if c.idx < len(c.rules) {
			c.rules[c.idx].Rewind()
		}
	}
}

// Split flattens a rule into the individually ordered rules it is made of.
func Split(r Rule) []Rule {
	chain, ok := r.(*Chain)
	if !ok {
		return []Rule{r}
	}
	out := make([]Rule, 0, len(chain.rules))
	for _, child := range chain.rules {
		out = append(out, Split(child)...)
	}
	return out
}

// Periods rewinds r and yields its occurrences one at a time.
func Periods(r Rule) iter.Seq[period.Period] {
	return func(yield func(period.Period) bool) {
		for r.Rewind(); r.Valid(); r.Advance() {
			if !yield(r.Current()) {
				return
			}
		}
	}
}
