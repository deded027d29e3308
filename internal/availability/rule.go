package availability

import (
	"iter"

	"github.com/example/booking-sessions/internal/period"
	"github.com/example/booking-sessions/internal/recurrence"
)

// RuleAvailability exposes the occurrences of a single ordered rule.
// Overlapping or touching occurrences are merged. The rule is rewound on each
// call, so a RuleAvailability must not be iterated concurrently.
type RuleAvailability struct {
	rule        recurrence.Rule
	resourceIDs []string
	timezone    string
}

// NewRuleAvailability wraps rule. rule must yield occurrences ordered by
// start; use recurrence.Split for chains.
func NewRuleAvailability(rule recurrence.Rule, timezone string, resourceIDs ...string) *RuleAvailability {
	return &RuleAvailability{rule: rule, resourceIDs: Resources(resourceIDs...), timezone: timezone}
}

// Timezone returns the timezone the rule was configured in. It is carried
// through unchanged.
func (a *RuleAvailability) Timezone() string {
	return a.timezone
}

// AvailablePeriods implements Availability.
func (a *RuleAvailability) AvailablePeriods(rng period.Period) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		var pending period.Period
		havePending := false

		for occ := range recurrence.Periods(a.rule) {
			if occ.Start >= rng.End {
				break
			}
			clipped, ok := occ.Clip(rng)
			if !ok {
				continue
			}
			if havePending && clipped.Start <= pending.End {
				pending.End = max(pending.End, clipped.End)
				continue
			}
			if havePending && !yield(Period{Period: pending, ResourceIDs: a.resourceIDs}) {
				return
			}
			pending, havePending = clipped, true
		}

		if havePending {
			yield(Period{Period: pending, ResourceIDs: a.resourceIDs})
		}
	}
}
