package availability

import (
	"iter"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-sessions/internal/period"
	"github.com/example/booking-sessions/internal/persistence"
	"github.com/example/booking-sessions/internal/recurrence"
)

var everything = period.Period{Start: 0, End: 1 << 40}

func static(ids []string, spans ...[2]int64) Availability {
	return Func(func(rng period.Period) iter.Seq[Period] {
		return func(yield func(Period) bool) {
			for _, span := range spans {
				clipped, ok := period.Period{Start: span[0], End: span[1]}.Clip(rng)
				if !ok {
					continue
				}
				if !yield(Period{Period: clipped, ResourceIDs: ids}) {
					return
				}
			}
		}
	})
}

func seg(start, end int64, ids ...string) Period {
	return Period{Period: period.Period{Start: start, End: end}, ResourceIDs: ids}
}

func TestComposite_UnionLabelsOverlap(t *testing.T) {
	t.Parallel()

	a := static([]string{"A"}, [2]int64{0, 10}, [2]int64{20, 30})
	b := static([]string{"B"}, [2]int64{5, 15})

	got := Collect(NewComposite(a, b), everything)
	assert.Equal(t, []Period{
		seg(0, 5, "A"),
		seg(5, 10, "A", "B"),
		seg(10, 15, "B"),
		seg(20, 30, "A"),
	}, got)
}

func TestComposite_CoalescesAdjacentSegments(t *testing.T) {
	t.Parallel()

	a := static([]string{"A"}, [2]int64{0, 5})
	b := static([]string{"A"}, [2]int64{5, 10}, [2]int64{12, 14})

	assert.Equal(t, []Period{seg(0, 10, "A"), seg(12, 14, "A")}, Collect(NewComposite(a, b), everything))
	assert.Empty(t, Collect(NewComposite(), everything))
}

func TestIntersection_RequiresEveryChild(t *testing.T) {
	t.Parallel()

	a := static([]string{"A"}, [2]int64{0, 10}, [2]int64{20, 30})
	b := static([]string{"B"}, [2]int64{5, 25})

	assert.Equal(t, []Period{seg(5, 10, "A", "B"), seg(20, 25, "A", "B")}, Collect(NewIntersection(a, b), everything))
	assert.Empty(t, Collect(NewIntersection(), everything))
	assert.Empty(t, Collect(NewIntersection(a, Empty), everything))
}

func TestSubtractive_RemovesOtherPeriods(t *testing.T) {
	t.Parallel()

	base := static([]string{"A"}, [2]int64{0, 10}, [2]int64{20, 30})
	minus := static([]string{"X"}, [2]int64{3, 5}, [2]int64{8, 22})

	assert.Equal(t, []Period{seg(0, 3, "A"), seg(5, 8, "A"), seg(22, 30, "A")}, Collect(NewSubtractive(base, minus), everything))
	assert.Equal(t, Collect(base, everything), Collect(NewSubtractive(base), everything))
}

func TestSweep_ClipsToRangeAndStopsEarly(t *testing.T) {
	t.Parallel()

	a := static([]string{"A"}, [2]int64{0, 10}, [2]int64{20, 30}, [2]int64{40, 50})
	b := static([]string{"B"}, [2]int64{25, 45})
	union := NewComposite(a, b)

	assert.Equal(t, []Period{seg(5, 10, "A"), seg(20, 25, "A"), seg(25, 27, "A", "B")},
		Collect(union, period.Period{Start: 5, End: 27}))

	var first []Period
	for p := range union.AvailablePeriods(everything) {
		first = append(first, p)
		break
	}
	assert.Equal(t, []Period{seg(0, 10, "A")}, first)
}

func TestPeriod_Covers(t *testing.T) {
	t.Parallel()

	p := seg(0, 1, Resources("C", "A", "B", "A")...)
	assert.Equal(t, []string{"A", "B", "C"}, p.ResourceIDs)
	assert.True(t, p.Covers(nil))
	assert.True(t, p.Covers([]string{"A", "C"}))
	assert.False(t, p.Covers([]string{"A", "D"}))
}

var monday = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

func dailyConfig(days int) recurrence.Config {
	return recurrence.Config{
		Start:             mo.Some(monday.Unix()),
		End:               mo.Some(monday.Add(8 * time.Hour).Unix()),
		Repeat:            true,
		RepeatUnit:        "days",
		RepeatPeriod:      1,
		RepeatUntil:       "period",
		RepeatUntilPeriod: days,
	}
}

func TestRuleAvailability_MergesOverlappingOccurrences(t *testing.T) {
	t.Parallel()

	rule, err := recurrence.Build(recurrence.Config{
		Start:             mo.Some(monday.Unix()),
		End:               mo.Some(monday.Add(30 * time.Hour).Unix()),
		Repeat:            true,
		RepeatUnit:        "days",
		RepeatPeriod:      1,
		RepeatUntil:       "period",
		RepeatUntilPeriod: 3,
	})
	require.NoError(t, err)

	a := NewRuleAvailability(rule, "Europe/Berlin", "room-1")
	assert.Equal(t, "Europe/Berlin", a.Timezone())
	got := Collect(a, everything)
	require.Len(t, got, 1)
	assert.Equal(t, monday.Unix(), got[0].Start)
	assert.Equal(t, monday.AddDate(0, 0, 2).Add(30*time.Hour).Unix(), got[0].End)
	assert.Equal(t, []string{"room-1"}, got[0].ResourceIDs)
}

func TestFactory_MakeSubtractsExcludedDays(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(5)
	cfg.ExcludeDates = "2024-03-04,2024-03-06"

	a, err := NewFactory().Make(cfg, "UTC", "room-1")
	require.NoError(t, err)

	var starts []time.Time
	for _, p := range Collect(a, everything) {
		starts = append(starts, p.StartTime())
		assert.Equal(t, int64(8*3600), p.Duration())
	}
	assert.Equal(t, []time.Time{monday.AddDate(0, 0, 1), monday.AddDate(0, 0, 3), monday.AddDate(0, 0, 4)}, starts)
}

func TestFactory_MakeKeepsWeekdayRunsOrdered(t *testing.T) {
	t.Parallel()

	cfg := dailyConfig(0)
	cfg.RepeatUnit = "weeks"
	cfg.RepeatUntil = "date"
	cfg.RepeatUntilDate = mo.Some(monday.AddDate(0, 0, 13).Unix())
	cfg.RepeatWeeklyOn = "friday,monday"

	a, err := NewFactory().Make(cfg, "UTC", "room-1")
	require.NoError(t, err)

	got := Collect(a, everything)
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].End, got[i].Start)
	}
	assert.Equal(t, monday.Unix(), got[0].Start)
	assert.Equal(t, monday.AddDate(0, 0, 11).Unix(), got[3].Start)
}

func TestFactory_ForResource(t *testing.T) {
	t.Parallel()

	morning := dailyConfig(2)
	evening := dailyConfig(2)
	evening.Start = mo.Some(monday.Add(10 * time.Hour).Unix())
	evening.End = mo.Some(monday.Add(12 * time.Hour).Unix())

	resource := persistence.Resource{
		ID:           "coach-1",
		Availability: persistence.ResourceAvailability{Timezone: "UTC", Rules: []recurrence.Config{morning, evening}},
	}
	a, err := NewFactory().ForResource(resource)
	require.NoError(t, err)

	got := Collect(a, everything)
	require.Len(t, got, 4)
	assert.Equal(t, monday.Add(8*time.Hour).Unix(), got[0].End)
	assert.Equal(t, []string{"coach-1"}, got[1].ResourceIDs)
	assert.Equal(t, monday.AddDate(0, 0, 1).Unix(), got[2].Start)

	resource.Availability.Rules = append(resource.Availability.Rules, recurrence.Config{})
	_, err = NewFactory().ForResource(resource)
	assert.ErrorIs(t, err, recurrence.ErrInvalidConfig)
}
