package recurrence

import "time"

// MonthlyMode selects how a monthly rule picks the day within each month.
type MonthlyMode int

const (
	// MonthlyDateOfMonth keeps the seed's day of month.
	MonthlyDateOfMonth MonthlyMode = iota + 1
	// MonthlyNthWeekday keeps the seed's ordinal weekday, e.g. the 2nd Tuesday.
	MonthlyNthWeekday
)

// String returns the configuration name of the mode.
func (m MonthlyMode) String() string {
	switch m {
	case MonthlyDateOfMonth:
		return "day_of_month"
	case MonthlyNthWeekday:
		return "nth_weekday"
	default:
		return "unknown"
	}
}

// maxMonthSearch bounds the search for a month holding a given ordinal
// weekday. A 5th weekday in February can take decades to come around.
const maxMonthSearch = 12 * 40

// Monthly repeats every N months.
type Monthly struct {
	cursor
	mode MonthlyMode
	day  int
}

// NewMonthly returns a monthly rule positioned on its seed.
func NewMonthly(pattern Pattern, mode MonthlyMode) *Monthly {
	r := &Monthly{mode: mode, day: pattern.First.StartTime().Day()}
	r.cursor = newCursor(pattern, r.next)
	return r
}

// Mode returns the monthly repeat mode.
func (r *Monthly) Mode() MonthlyMode {
	return r.mode
}

func (r *Monthly) next(ts int64) int64 {
	t := utc(ts)
	n := r.pattern.Frequency()

	switch r.mode {
	case MonthlyNthWeekday:
		wd := t.Weekday()
		nth := (t.Day()-1)/7 + 1
		for i := 1; i <= maxMonthSearch; i++ {
			month := time.Date(t.Year(), t.Month()+time.Month(n*i), 1, 0, 0, 0, 0, time.UTC)
			day, ok := nthWeekdayOfMonth(month.Year(), month.Month(), nth, wd)
			if !ok {
				continue
			}
			return time.Date(month.Year(), month.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
		}
		return ts
	default:
		return addMonthsOnDay(t, n, r.day).Unix()
	}
}
