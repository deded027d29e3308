// Package recurrence expands user configured repetition rules into ordered
// occurrence periods.
//
// Every rule variant shares one cursor: the seed occurrence is produced
// first, then a variant specific step function computes each following start
// until the iteration end is reached. Occurrences whose calendar date is
// excluded are skipped, and the skipped candidate becomes the basis of the
// next step.
//
// Rules hold cursor state and are not safe for concurrent use. A consumer that
// needs an independent pass must Rewind, or build its own rule.
package recurrence

import (
	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/period"
)

// Rule is a pull based sequence of occurrence periods.
type Rule interface {
	// Rewind positions the rule back on its seed occurrence.
	Rewind()
	// Valid reports whether Current holds an occurrence.
	Valid() bool
	// Current returns the occurrence under the cursor.
	Current() period.Period
	// Advance moves to the next occurrence, or exhausts the rule.
	Advance()
}

// Pattern carries the attributes every rule variant shares.
type Pattern struct {
	// First is the seed occurrence. Its duration is reused for every repeat.
	First period.Period
	// RepeatFreq repeats every N units. Absent or zero means the seed only.
	RepeatFreq mo.Option[int]
	// RepeatEnd bounds the starts of repeated occurrences. When absent the
	// seed end is used.
	RepeatEnd mo.Option[int64]
	// InclusiveEnd admits a repeat starting exactly at RepeatEnd. Counted
	// repetition sets it so that the last counted step is emitted.
	InclusiveEnd bool
	// ExcludedDates lists calendar dates on which no repeat may start.
	ExcludedDates ExcludedDates
}

// IterationEnd is the upper bound for occurrence starts. It is exclusive
// unless InclusiveEnd is set.
func (s Pattern) IterationEnd() int64 {
	return s.RepeatEnd.OrElse(s.First.End)
}

// beyond reports whether a repeat starting at ts lies past the bound.
func (s Pattern) beyond(ts int64) bool {
	end := s.IterationEnd()
	if s.InclusiveEnd {
		return ts > end
	}
	return ts >= end
}

// Frequency returns the repeat frequency, zero when absent.
func (s Pattern) Frequency() int {
	return s.RepeatFreq.OrElse(0)
}

type stepFunc func(ts int64) int64

// cursor is the iteration state shared by all variants.
type cursor struct {
	pattern    Pattern
	step       stepFunc
	current    int64
	occurrence period.Period
	valid      bool
}

func newCursor(pattern Pattern, step stepFunc) cursor {
	c := cursor{pattern: pattern, step: step}
	c.Rewind()
	return c
}

// Pattern returns the rule attributes.
func (c *cursor) Pattern() Pattern {
	return c.pattern
}

// Rewind implements Rule.
func (c *cursor) Rewind() {
	c.current = c.pattern.First.Start
	c.occurrence = c.pattern.First
	c.valid = true
}

// Valid implements Rule.
func (c *cursor) Valid() bool {
	return c.valid
}

// Current implements Rule. It returns the zero Period once exhausted.
func (c *cursor) Current() period.Period {
	if !c.valid {
		return period.Period{}
	}
	return c.occurrence
}

// Advance implements Rule.
func (c *cursor) Advance() {
	if !c.valid {
		return
	}

	if c.pattern.Frequency() <= 0 || c.pattern.beyond(c.current) {
		c.valid = false
		return
	}

	duration := c.pattern.First.Duration()
	for {
		next := c.step(c.current)
		if next <= c.current {
			// a step that cannot move forward ends the rule
			c.valid = false
			return
		}
		c.current = next
		if c.pattern.beyond(c.current) {
			c.valid = false
			return
		}
		if c.pattern.ExcludedDates.Contains(c.current) {
			continue
		}
		c.occurrence = period.Period{Start: c.current, End: c.current + duration}
		return
	}
}
