package availability

import (
	"fmt"
	"iter"

	"github.com/example/booking-sessions/internal/period"
	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/recurrence"
)

const secondsPerDay = 24 * 60 * 60

// Factory turns stored rule configurations into availabilities.
type Factory struct{}

// NewFactory returns a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Make builds the availability described by one rule configuration. Each
// ordered run of the rule becomes its own RuleAvailability inside a
// Composite, and excluded dates are removed as whole days, seed included.
func (f *Factory) Make(cfg recurrence.Config, timezone string, resourceIDs ...string) (Availability, error) {
	rule, err := recurrence.Build(cfg)
	if err != nil {
		return nil, err
	}

	composite := NewComposite()
	for _, run := range recurrence.Split(rule) {
		composite.Add(NewRuleAvailability(run, timezone, resourceIDs...))
	}

	excluded, err := recurrence.ParseExcludedDates(cfg.ExcludeDates)
	if err != nil {
		return nil, err
	}
	if excluded.Len() == 0 {
		return composite, nil
	}
	return NewSubtractive(composite, wholeDays(excluded.Sorted())), nil
}

// ForResource returns the union of every rule of the resource, labelled with
// the resource id.
func (f *Factory) ForResource(resource persistence.Resource) (Availability, error) {
	composite := NewComposite()
	for i, cfg := range resource.Availability.Rules {
		a, err := f.Make(cfg, resource.Availability.Timezone, resource.ID)
		if err != nil {
			return nil, fmt.Errorf("resource %s rule %d: %w", resource.ID, i, err)
		}
		composite.Add(a)
	}
	return composite, nil
}

// wholeDays yields each of the sorted dates as a full UTC day.
func wholeDays(dates []int64) Availability {
	return Func(func(rng period.Period) iter.Seq[Period] {
		return func(yield func(Period) bool) {
			for _, date := range dates {
				day := period.Period{Start: date, End: date + secondsPerDay}
				clipped, ok := day.Clip(rng)
				if !ok {
					if day.Start >= rng.End {
						return
					}
					continue
				}
				if !yield(Period{Period: clipped}) {
					return
				}
			}
		}
	})
}
