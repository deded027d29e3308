package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-sessions/internal/period"
)

var seedStart = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC) // a Monday

func seed(start time.Time, d time.Duration) period.Period {
	return period.FromTimes(start, start.Add(d))
}

func collectStarts(t *testing.T, r Rule) []time.Time {
	t.Helper()
	var out []time.Time
	for p := range Periods(r) {
		out = append(out, p.StartTime())
		require.Less(t, len(out), 10000, "rule does not terminate")
	}
	return out
}

func days(base time.Time, offsets ...int) []time.Time {
	out := make([]time.Time, 0, len(offsets))
	for _, off := range offsets {
		out = append(out, base.AddDate(0, 0, off))
	}
	return out
}

func TestRule_NonRepeatingYieldsSeedOnly(t *testing.T) {
	t.Parallel()

	first := seed(seedStart, time.Hour)
	for _, freq := range []mo.Option[int]{mo.None[int](), mo.Some(0), mo.Some(-3)} {
		r := NewDaily(Pattern{First: first, RepeatFreq: freq, RepeatEnd: mo.Some(first.Start + 30*86400)})
		got := make([]period.Period, 0)
		for p := range Periods(r) {
			got = append(got, p)
		}
		assert.Equal(t, []period.Period{first}, got)
	}
}

func TestDaily_StartsEveryNDaysBeforeEnd(t *testing.T) {
	t.Parallel()

	first := seed(seedStart, 90*time.Minute)
	r := NewDaily(Pattern{
		First:      first,
		RepeatFreq: mo.Some(2),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 10).Unix()),
	})

	assert.Equal(t, days(seedStart, 0, 2, 4, 6, 8), collectStarts(t, r))
	for p := range Periods(r) {
		assert.Equal(t, first.Duration(), p.Duration())
	}
}

func TestDaily_EndIsExclusive(t *testing.T) {
	t.Parallel()

	r := NewDaily(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 3).Unix()),
	})
	assert.Equal(t, days(seedStart, 0, 1, 2), collectStarts(t, r))
}

func TestDaily_WithoutRepeatEndStopsAtSeedEnd(t *testing.T) {
	t.Parallel()

	r := NewDaily(Pattern{First: seed(seedStart, time.Hour), RepeatFreq: mo.Some(1)})
	assert.Equal(t, days(seedStart, 0), collectStarts(t, r))
}

func TestExclusion_SkipsDatesButNotSeed(t *testing.T) {
	t.Parallel()

	r := NewDaily(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 5).Unix()),
		ExcludedDates: NewExcludedDates(
			seedStart.Unix(),
			seedStart.AddDate(0, 0, 2).Add(5*time.Hour).Unix(),
		),
	})

	assert.Equal(t, days(seedStart, 0, 1, 3, 4), collectStarts(t, r))
}

func TestExclusion_ExcludedCandidateBecomesBasis(t *testing.T) {
	t.Parallel()

	// every 3 days; 03-07 is excluded so the next candidate is 03-10, not 03-07+1
	r := NewDaily(Pattern{
		First:         seed(seedStart, time.Hour),
		RepeatFreq:    mo.Some(3),
		RepeatEnd:     mo.Some(seedStart.AddDate(0, 0, 12).Unix()),
		ExcludedDates: NewExcludedDates(seedStart.AddDate(0, 0, 3).Unix()),
	})
	assert.Equal(t, days(seedStart, 0, 6, 9), collectStarts(t, r))
}

func TestExclusion_DenseSetDoesNotRecurse(t *testing.T) {
	t.Parallel()

	excluded := make([]int64, 0, 5000)
	for i := 1; i <= 5000; i++ {
		excluded = append(excluded, seedStart.AddDate(0, 0, i).Unix())
	}
	r := NewDaily(Pattern{
		First:         seed(seedStart, time.Hour),
		RepeatFreq:    mo.Some(1),
		RepeatEnd:     mo.Some(seedStart.AddDate(0, 0, 5002).Unix()),
		ExcludedDates: NewExcludedDates(excluded...),
	})
	assert.Equal(t, days(seedStart, 0, 5001), collectStarts(t, r))
}

func TestRule_ExhaustionIsPermanentUntilRewind(t *testing.T) {
	t.Parallel()

	r := NewDaily(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 2).Unix()),
	})
	r.Advance()
	r.Advance()
	require.False(t, r.Valid())
	r.Advance()
	assert.False(t, r.Valid())
	assert.Equal(t, period.Period{}, r.Current())

	r.Rewind()
	require.True(t, r.Valid())
	assert.Equal(t, seedStart.Unix(), r.Current().Start)
}

func TestWeekly_SingleWeekdayStepsWholeWeeks(t *testing.T) {
	t.Parallel()

	r := NewWeekly(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(2),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 43).Unix()),
	}, nil)
	assert.Equal(t, []time.Weekday{time.Monday}, r.Weekdays())
	assert.Equal(t, days(seedStart, 0, 14, 28, 42), collectStarts(t, r))
}

func TestWeekly_CyclesWeekdaysWithoutRepeatingSeed(t *testing.T) {
	t.Parallel()

	r := NewWeekly(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 15).Unix()),
	}, []time.Weekday{time.Monday, time.Wednesday, time.Friday})

	got := collectStarts(t, r)
	require.GreaterOrEqual(t, len(got), 4)
	assert.Equal(t, seedStart, got[0])
	assert.Equal(t, days(seedStart, 2, 4, 7), got[1:4])
	assert.Equal(t, days(seedStart, 0, 2, 4, 7, 9, 11, 14), got)
}

func TestWeekly_RejectsWeekdaysBeforeSeed(t *testing.T) {
	t.Parallel()

	wednesday := seedStart.AddDate(0, 0, 2)
	r := NewWeekly(Pattern{
		First:      seed(wednesday, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(wednesday.AddDate(0, 0, 8).Unix()),
	}, []time.Weekday{time.Friday, time.Monday}) // unordered on purpose

	assert.Equal(t, days(wednesday, 0, 2, 5), collectStarts(t, r))
}

func TestWeekly_RewindResetsCycle(t *testing.T) {
	t.Parallel()

	r := NewWeekly(Pattern{
		First:      seed(seedStart, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(seedStart.AddDate(0, 0, 21).Unix()),
	}, []time.Weekday{time.Monday, time.Thursday})

	r.Advance()
	r.Advance()
	first := collectStarts(t, r)
	second := collectStarts(t, r)
	assert.Equal(t, first, second)
	assert.Equal(t, days(seedStart, 0, 3, 7, 10, 14, 17), first)
}

func TestMonthly_NthWeekdayStaysOnOrdinal(t *testing.T) {
	t.Parallel()

	secondTuesday := time.Date(2024, time.January, 9, 18, 30, 0, 0, time.UTC)
	r := NewMonthly(Pattern{
		First:      seed(secondTuesday, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(secondTuesday.AddDate(1, 0, 0).Unix()),
	}, MonthlyNthWeekday)

	got := collectStarts(t, r)
	require.Len(t, got, 12)
	for i, start := range got {
		assert.Equal(t, time.Tuesday, start.Weekday(), start)
		assert.GreaterOrEqual(t, start.Day(), 8)
		assert.LessOrEqual(t, start.Day(), 14)
		assert.Equal(t, 18, start.Hour())
		assert.Equal(t, 30, start.Minute())
		assert.Equal(t, time.Month(i+1), start.Month())
	}
}

func TestMonthly_NthWeekdaySkipsMonthsWithoutOrdinal(t *testing.T) {
	t.Parallel()

	fifthFriday := time.Date(2024, time.March, 29, 10, 0, 0, 0, time.UTC)
	r := NewMonthly(Pattern{
		First:      seed(fifthFriday, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC).Unix()),
	}, MonthlyNthWeekday)

	assert.Equal(t, []time.Time{
		fifthFriday,
		time.Date(2024, time.May, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, time.August, 30, 10, 0, 0, 0, time.UTC),
	}, collectStarts(t, r))
}

func TestMonthly_DateOfMonthClampsToMonthEnd(t *testing.T) {
	t.Parallel()

	jan31 := time.Date(2024, time.January, 31, 8, 0, 0, 0, time.UTC)
	r := NewMonthly(Pattern{
		First:      seed(jan31, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC).Unix()),
	}, MonthlyDateOfMonth)

	assert.Equal(t, []time.Time{
		jan31,
		time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 8, 0, 0, 0, time.UTC),
	}, collectStarts(t, r))
}

func TestYearly_LeapDayClampsInCommonYears(t *testing.T) {
	t.Parallel()

	leap := time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)
	r := NewYearly(Pattern{
		First:      seed(leap, time.Hour),
		RepeatFreq: mo.Some(1),
		RepeatEnd:  mo.Some(time.Date(2028, time.March, 1, 0, 0, 0, 0, time.UTC).Unix()),
	})

	assert.Equal(t, []time.Time{
		leap,
		time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.February, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2027, time.February, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2028, time.February, 29, 12, 0, 0, 0, time.UTC),
	}, collectStarts(t, r))
}

func TestChain_ConcatenatesAndRewinds(t *testing.T) {
	t.Parallel()

	a := NewDaily(Pattern{First: seed(seedStart, time.Hour), RepeatFreq: mo.Some(1), RepeatEnd: mo.Some(seedStart.AddDate(0, 0, 2).Unix())})
	instant := NewDaily(Pattern{First: seed(seedStart, 0)})
	b := NewDaily(Pattern{First: seed(seedStart.AddDate(0, 1, 0), time.Hour)})
	c := NewChain(a, instant, b)

	want := []time.Time{seedStart, seedStart.AddDate(0, 0, 1), seedStart, seedStart.AddDate(0, 1, 0)}
	assert.Equal(t, want, collectStarts(t, c))
	assert.Equal(t, want, collectStarts(t, c))
	assert.Len(t, Split(NewChain(c, a)), 4)

	assert.False(t, NewChain().Valid())
}

func TestExcludedDates_Sorted(t *testing.T) {
	t.Parallel()

	e := NewExcludedDates(seedStart.AddDate(0, 0, 3).Unix(), seedStart.Unix(), seedStart.Add(time.Hour).Unix())
	assert.Equal(t, 2, e.Len())
	assert.Equal(t, []int64{DateOf(seedStart.Unix()), DateOf(seedStart.AddDate(0, 0, 3).Unix())}, e.Sorted())
}
