package testfixtures

import (
	"time"

	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/recurrence"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// OneOffRule returns a non-repeating rule covering [start, start+d).
func OneOffRule(start time.Time, d time.Duration) recurrence.Config {
	return recurrence.Config{
		Start: mo.Some(start.Unix()),
		End:   mo.Some(start.Add(d).Unix()),
	}
}

// DailyRule returns a rule covering [start, start+d) every day up to and
// including the date of until.
func DailyRule(start time.Time, d time.Duration, until time.Time) recurrence.Config {
	cfg := OneOffRule(start, d)
	cfg.Repeat = true
	cfg.RepeatUnit = "days"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "date"
	cfg.RepeatUntilDate = mo.Some(until.Unix())
	return cfg
}

// WeeklyRule is DailyRule repeated weekly on the listed weekdays, for
// example "monday,wednesday".
func WeeklyRule(start time.Time, d time.Duration, until time.Time, weekdays string) recurrence.Config {
	cfg := DailyRule(start, d, until)
	cfg.RepeatUnit = "weeks"
	cfg.RepeatWeeklyOn = weekdays
	return cfg
}

// NewResource returns a UTC resource available by the given rules.
func NewResource(id string, rules ...recurrence.Config) persistence.Resource {
	return persistence.Resource{
		ID:   id,
		Name: "Resource " + id,
		Availability: persistence.ResourceAvailability{
			Timezone: "UTC",
			Rules:    rules,
		},
	}
}

// NewService returns a service bounded by the schedule resource.
func NewService(id, scheduleID string, sessionTypes ...persistence.SessionTypeConfig) persistence.Service {
	return persistence.Service{
		ID:           id,
		Name:         "Service " + id,
		ScheduleID:   scheduleID,
		SessionTypes: sessionTypes,
	}
}

// FixedDuration returns a fixed duration session type needing the listed
// resources. Without resources the type needs none.
func FixedDuration(d time.Duration, resources ...string) persistence.SessionTypeConfig {
	return persistence.SessionTypeConfig{
		Type: "fixed_duration",
		Data: mo.Some(persistence.SessionTypeData{
			Duration:  int64(d / time.Second),
			Resources: mo.Some(append([]string{}, resources...)),
		}),
	}
}

// FixedDurationWithoutResourceList returns a fixed duration session type
// whose resource list is absent.
func FixedDurationWithoutResourceList(d time.Duration) persistence.SessionTypeConfig {
	return persistence.SessionTypeConfig{
		Type: "fixed_duration",
		Data: mo.Some(persistence.SessionTypeData{Duration: int64(d / time.Second)}),
	}
}
