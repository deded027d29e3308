package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/period"
)

// ErrInvalidConfig is matched by every ConfigError.
var ErrInvalidConfig = errors.New("recurrence: invalid rule configuration")

// ConfigError identifies the configuration field that prevented a rule from
// being built.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("recurrence: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("recurrence: %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets callers match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

func missing(field string) error {
	return &ConfigError{Field: field, Reason: "is required"}
}

// Config is the flat rule record edited by users. Field names follow the
// stored representation.
type Config struct {
	Start             mo.Option[int64] `json:"start"`
	End               mo.Option[int64] `json:"end"`
	AllDay            bool             `json:"all_day"`
	Repeat            bool             `json:"repeat"`
	RepeatUnit        string           `json:"repeat_unit"`
	RepeatPeriod      int              `json:"repeat_period"`
	RepeatUntil       string           `json:"repeat_until"`
	RepeatUntilPeriod int              `json:"repeat_until_period"`
	RepeatUntilDate   mo.Option[int64] `json:"repeat_until_date"`
	RepeatMonthlyOn   string           `json:"repeat_monthly_on"`
	RepeatWeeklyOn    string           `json:"repeat_weekly_on"`
	ExcludeDates      string           `json:"exclude_dates"`
}

// Unit is a repetition unit.
type Unit int

const (
	UnitDays Unit = iota + 1
	UnitWeeks
	UnitMonths
	UnitYears
)

// String returns the configuration name of the unit.
func (u Unit) String() string {
	switch u {
	case UnitDays:
		return "days"
	case UnitWeeks:
		return "weeks"
	case UnitMonths:
		return "months"
	case UnitYears:
		return "years"
	default:
		return "unknown"
	}
}

// advance moves t by n units.
func (u Unit) advance(t time.Time, n int) time.Time {
	switch u {
	case UnitWeeks:
		return t.AddDate(0, 0, 7*n)
	case UnitMonths:
		return t.AddDate(0, n, 0)
	case UnitYears:
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// ParseUnit resolves a case-insensitive repetition unit.
func ParseUnit(value string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "days", "day":
		return UnitDays, nil
	case "weeks", "week":
		return UnitWeeks, nil
	case "months", "month":
		return UnitMonths, nil
	case "years", "year":
		return UnitYears, nil
	case "":
		return 0, missing("repeat_unit")
	default:
		return 0, &ConfigError{Field: "repeat_unit", Value: value, Reason: "unknown repeat unit"}
	}
}

// UntilMode selects how the end of repetition is expressed.
type UntilMode int

const (
	// UntilPeriod repeats a number of units, counting the seed.
	UntilPeriod UntilMode = iota + 1
	// UntilDate repeats up to and including a date.
	UntilDate
)

// ParseUntilMode resolves the repeat_until field.
func ParseUntilMode(value string) (UntilMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "period":
		return UntilPeriod, nil
	case "date":
		return UntilDate, nil
	case "":
		return 0, missing("repeat_until")
	default:
		return 0, &ConfigError{Field: "repeat_until", Value: value, Reason: "unknown repeat until mode"}
	}
}

// ParseMonthlyMode resolves the repeat_monthly_on field. An empty value
// keeps the day of month.
func ParseMonthlyMode(value string) (MonthlyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "day_of_month", "date":
		return MonthlyDateOfMonth, nil
	case "nth_weekday", "dotw":
		return MonthlyNthWeekday, nil
	default:
		return 0, &ConfigError{Field: "repeat_monthly_on", Value: value, Reason: "unknown monthly repeat mode"}
	}
}

// ParseWeekdays splits a comma separated weekday list, dropping blanks and
// duplicates while keeping the given order.
func ParseWeekdays(list string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]struct{})
	for _, raw := range strings.Split(list, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		wd, err := ParseWeekday(name)
		if err != nil {
			return nil, &ConfigError{Field: "repeat_weekly_on", Value: name, Reason: "unknown weekday"}
		}
		if _, ok := seen[wd]; ok {
			continue
		}
		seen[wd] = struct{}{}
		days = append(days, wd)
	}
	return days, nil
}

// Build translates a rule configuration into a rule. Weekly configurations
// listing several weekdays produce a Chain holding one rule per weekday.
func Build(cfg Config) (Rule, error) {
	start, ok := cfg.Start.Get()
	if !ok {
		return nil, missing("start")
	}
	end, ok := cfg.End.Get()
	if !ok {
		return nil, missing("end")
	}
	if end < start {
		return nil, &ConfigError{Field: "end", Value: fmt.Sprint(end), Reason: "precedes start"}
	}

	if cfg.AllDay {
		start = DateOf(start)
		end = utc(DateOf(end)).AddDate(0, 0, 1).Unix()
	}

	excluded, err := ParseExcludedDates(cfg.ExcludeDates)
	if err != nil {
		return nil, err
	}

	first := period.New(start, end)
	if !cfg.Repeat {
		return NewDaily(Pattern{
			First:         first,
			RepeatFreq:    mo.Some(0),
			RepeatEnd:     mo.Some(end),
			ExcludedDates: excluded,
		}), nil
	}

	unit, err := ParseUnit(cfg.RepeatUnit)
	if err != nil {
		return nil, err
	}
	repeatEnd, inclusive, err := computeRepeatEnd(cfg, unit, start)
	if err != nil {
		return nil, err
	}

	pattern := Pattern{
		First:         first,
		RepeatFreq:    mo.Some(cfg.RepeatPeriod),
		RepeatEnd:     mo.Some(repeatEnd),
		InclusiveEnd:  inclusive,
		ExcludedDates: excluded,
	}

	switch unit {
	case UnitDays:
		return NewDaily(pattern), nil
	case UnitWeeks:
		return buildWeekly(pattern, cfg.RepeatWeeklyOn)
	case UnitMonths:
		mode, err := ParseMonthlyMode(cfg.RepeatMonthlyOn)
		if err != nil {
			return nil, err
		}
		return NewMonthly(pattern, mode), nil
	case UnitYears:
		return NewYearly(pattern), nil
	default:
		return nil, &ConfigError{Field: "repeat_unit", Value: unit.String(), Reason: "unknown repeat unit"}
	}
}

// computeRepeatEnd derives the repetition bound. In period mode the count
// includes the seed: a count of n places the last start n-1 units past the
// seed, and that start is admitted. In date mode the bound is the midnight
// after the until date, exclusive.
func computeRepeatEnd(cfg Config, unit Unit, start int64) (int64, bool, error) {
	mode, err := ParseUntilMode(cfg.RepeatUntil)
	if err != nil {
		return 0, false, err
	}

	switch mode {
	case UntilPeriod:
		count := max(cfg.RepeatUntilPeriod, 1)
		return unit.advance(utc(start), count-1).Unix(), true, nil
	case UntilDate:
		until, ok := cfg.RepeatUntilDate.Get()
		if !ok {
			return 0, false, missing("repeat_until_date")
		}
		return utc(until).AddDate(0, 0, 1).Unix(), false, nil
	default:
		return 0, false, &ConfigError{Field: "repeat_until", Value: cfg.RepeatUntil, Reason: "unknown repeat until mode"}
	}
}

// weekdayListMaxDuration is the longest occurrence a weekday list applies to.
// Longer occurrences repeat weekly from the seed and the list is ignored.
const weekdayListMaxDuration = 24 * 60 * 60

// buildWeekly returns one rule per listed weekday, each seeded on the first
// such weekday on or after the configured start, at the same time of day.
func buildWeekly(pattern Pattern, weeklyOn string) (Rule, error) {
	days, err := ParseWeekdays(weeklyOn)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 || pattern.First.Duration() > weekdayListMaxDuration {
		return NewWeekly(pattern, nil), nil
	}

	seedDay := pattern.First.StartTime().Weekday()
	rules := make([]Rule, 0, len(days))
	for _, day := range days {
		shift := (int(day) - int(seedDay) + 7) % 7
		anchored := pattern
		anchored.First = period.New(
			pattern.First.StartTime().AddDate(0, 0, shift).Unix(),
			pattern.First.EndTime().AddDate(0, 0, shift).Unix(),
		)
		rules = append(rules, NewWeekly(anchored, nil))
	}

	if len(rules) == 1 {
		return rules[0], nil
	}
	return NewChain(rules...), nil
}
