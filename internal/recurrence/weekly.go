package recurrence

import (
	"slices"
	"time"
)

// Weekly repeats every N weeks. With a single weekday equal to the seed's it
// steps whole weeks; otherwise it cycles through the configured weekdays,
// moving N weeks ahead each time the cycle wraps.
type Weekly struct {
	cursor
	days []time.Weekday
	pos  int
}

// NewWeekly returns a weekly rule positioned on its seed. An empty weekday
// list defaults to the seed's weekday. Weekdays are deduplicated and ordered
// Monday first.
func NewWeekly(pattern Pattern, days []time.Weekday) *Weekly {
	r := &Weekly{days: normalizeWeekdays(days, pattern.First.StartTime().Weekday())}
	step := r.cycle
	if len(r.days) == 1 && r.days[0] == pattern.First.StartTime().Weekday() {
		step = r.everyWeek
	}
	r.cursor = newCursor(pattern, step)
	return r
}

// Weekdays returns the weekdays the rule emits occurrences on.
func (r *Weekly) Weekdays() []time.Weekday {
	return slices.Clone(r.days)
}

// Rewind implements Rule and also resets the weekday cycle.
func (r *Weekly) Rewind() {
	r.cursor.Rewind()
	r.pos = 0
}

func (r *Weekly) everyWeek(ts int64) int64 {
	return utc(ts).AddDate(0, 0, 7*r.pattern.Frequency()).Unix()
}

// cycle takes the next weekday from the cycle and returns that day in the
// week of ts. Candidates at or before the seed start are rejected so the seed
// is never produced twice.
func (r *Weekly) cycle(ts int64) int64 {
	basis := utc(ts)
	seed := r.pattern.First.Start
	for attempts := 0; attempts <= 2*len(r.days)+1; attempts++ {
		if r.pos >= len(r.days) {
			r.pos = 0
			basis = basis.AddDate(0, 0, 7*r.pattern.Frequency())
		}
		day := r.days[r.pos]
		r.pos++

		candidate := weekdayInWeek(basis, day).Unix()
		if candidate > seed {
			return candidate
		}
	}
	return ts
}

func normalizeWeekdays(days []time.Weekday, fallback time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]struct{}, len(days))
	result := make([]time.Weekday, 0, len(days))
	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			continue
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	if len(result) == 0 {
		return []time.Weekday{fallback}
	}
	slices.SortFunc(result, func(a, b time.Weekday) int {
		return isoIndex(a) - isoIndex(b)
	})
	return result
}
