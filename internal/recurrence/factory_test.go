package recurrence

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	return Config{
		Start: mo.Some(seedStart.Unix()),
		End:   mo.Some(seedStart.Add(time.Hour).Unix()),
	}
}

func requireConfigError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, field, cfgErr.Field)
}

func TestBuild_RequiresStartAndEnd(t *testing.T) {
	t.Parallel()

	_, err := Build(Config{End: mo.Some(seedStart.Unix())})
	requireConfigError(t, err, "start")

	_, err = Build(Config{Start: mo.Some(seedStart.Unix())})
	requireConfigError(t, err, "end")

	_, err = Build(Config{Start: mo.Some(seedStart.Unix()), End: mo.Some(seedStart.Add(-time.Hour).Unix())})
	requireConfigError(t, err, "end")
}

func TestBuild_NonRepeatingProducesSeed(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.RepeatUnit = "not looked at"
	r, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, days(seedStart, 0), collectStarts(t, r))
}

func TestBuild_AllDaySnapsToDates(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.AllDay = true
	r, err := Build(cfg)
	require.NoError(t, err)

	midnight := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight.Unix(), r.Current().Start)
	assert.Equal(t, midnight.AddDate(0, 0, 1).Unix(), r.Current().End)
}

func TestBuild_PeriodModeCountsFromSeed(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Repeat = true
	cfg.RepeatUnit = "weeks"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "period"
	cfg.RepeatUntilPeriod = 3

	r, err := Build(cfg)
	require.NoError(t, err)
	weekly, ok := r.(*Weekly)
	require.True(t, ok)
	assert.Equal(t, mo.Some(seedStart.AddDate(0, 0, 14).Unix()), weekly.Pattern().RepeatEnd)
	assert.True(t, weekly.Pattern().InclusiveEnd)
	assert.Equal(t, days(seedStart, 0, 7, 14), collectStarts(t, r))
}

func TestBuild_PeriodCountIsTheNumberOfOccurrences(t *testing.T) {
	t.Parallel()

	tests := map[int][]time.Time{
		0: days(seedStart, 0),
		1: days(seedStart, 0),
		2: days(seedStart, 0, 1),
		3: days(seedStart, 0, 1, 2),
	}
	for count, want := range tests {
		cfg := baseConfig()
		cfg.Repeat = true
		cfg.RepeatUnit = "days"
		cfg.RepeatPeriod = 1
		cfg.RepeatUntil = "period"
		cfg.RepeatUntilPeriod = count

		r, err := Build(cfg)
		require.NoError(t, err)
		assert.Equal(t, want, collectStarts(t, r), "count %d", count)
	}
}

func TestBuild_PeriodCountSkipsExcludedDates(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Repeat = true
	cfg.RepeatUnit = "days"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "period"
	cfg.RepeatUntilPeriod = 3
	cfg.ExcludeDates = seedStart.AddDate(0, 0, 2).Format(time.DateOnly)

	r, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, days(seedStart, 0, 1), collectStarts(t, r))
}

func TestBuild_UntilDateIsInclusive(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Repeat = true
	cfg.RepeatUnit = "days"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "date"
	cfg.RepeatUntilDate = mo.Some(time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC).Unix())

	r, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, days(seedStart, 0, 1, 2), collectStarts(t, r))
}

func TestBuild_WeeklyListBecomesChain(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Repeat = true
	cfg.RepeatUnit = "weeks"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "date"
	cfg.RepeatUntilDate = mo.Some(time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC).Unix())
	cfg.RepeatWeeklyOn = "wednesday, Mon, wed"

	r, err := Build(cfg)
	require.NoError(t, err)
	require.IsType(t, &Chain{}, r)
	assert.Len(t, Split(r), 2)

	// one ordered run per weekday, in listed order
	assert.Equal(t, days(seedStart, 2, 9, 0, 7), collectStarts(t, r))
	for p := range Periods(r) {
		assert.Equal(t, int64(3600), p.Duration())
	}
}

func TestBuild_WeeklyListIgnoredForMultiDayOccurrences(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.End = mo.Some(seedStart.Add(48 * time.Hour).Unix())
	cfg.Repeat = true
	cfg.RepeatUnit = "weeks"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "date"
	cfg.RepeatUntilDate = mo.Some(time.Date(2024, time.March, 17, 0, 0, 0, 0, time.UTC).Unix())
	cfg.RepeatWeeklyOn = "monday,wednesday"

	r, err := Build(cfg)
	require.NoError(t, err)
	require.IsType(t, &Weekly{}, r)
	assert.Equal(t, days(seedStart, 0, 7), collectStarts(t, r))

	cfg.End = mo.Some(seedStart.Add(24 * time.Hour).Unix())
	r, err = Build(cfg)
	require.NoError(t, err)
	assert.IsType(t, &Chain{}, r)
}

func TestBuild_MonthlyMode(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Repeat = true
	cfg.RepeatUnit = "Months"
	cfg.RepeatPeriod = 1
	cfg.RepeatUntil = "period"
	cfg.RepeatUntilPeriod = 12
	cfg.RepeatMonthlyOn = "nth_weekday"

	r, err := Build(cfg)
	require.NoError(t, err)
	monthly, ok := r.(*Monthly)
	require.True(t, ok)
	assert.Equal(t, MonthlyNthWeekday, monthly.Mode())

	cfg.RepeatMonthlyOn = ""
	r, err = Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, MonthlyDateOfMonth, r.(*Monthly).Mode())
}

func TestBuild_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	repeating := func(mutate func(*Config)) Config {
		cfg := baseConfig()
		cfg.Repeat = true
		cfg.RepeatUnit = "days"
		cfg.RepeatPeriod = 1
		cfg.RepeatUntil = "period"
		cfg.RepeatUntilPeriod = 2
		mutate(&cfg)
		return cfg
	}

	cases := map[string]struct {
		cfg   Config
		field string
	}{
		"unknown unit":       {repeating(func(c *Config) { c.RepeatUnit = "fortnights" }), "repeat_unit"},
		"missing unit":       {repeating(func(c *Config) { c.RepeatUnit = "" }), "repeat_unit"},
		"unknown until mode": {repeating(func(c *Config) { c.RepeatUntil = "forever" }), "repeat_until"},
		"missing until date": {repeating(func(c *Config) { c.RepeatUntil = "date" }), "repeat_until_date"},
		"unknown weekday": {repeating(func(c *Config) {
			c.RepeatUnit = "weeks"
			c.RepeatWeeklyOn = "monday,funday"
		}), "repeat_weekly_on"},
		"unknown monthly mode": {repeating(func(c *Config) {
			c.RepeatUnit = "months"
			c.RepeatMonthlyOn = "last_day"
		}), "repeat_monthly_on"},
		"bad exclude date": {repeating(func(c *Config) { c.ExcludeDates = "2024-03-05,soon" }), "exclude_dates"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Build(tc.cfg)
			requireConfigError(t, err, tc.field)
		})
	}
}

func TestConfigError_Message(t *testing.T) {
	t.Parallel()

	err := error(&ConfigError{Field: "repeat_unit", Value: "fortnights", Reason: "unknown repeat unit"})
	assert.Equal(t, `recurrence: repeat_unit "fortnights": unknown repeat unit`, err.Error())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, "recurrence: start: is required", missing("start").Error())
}

func TestParseExcludedDates_AcceptsMixedFormats(t *testing.T) {
	t.Parallel()

	set, err := ParseExcludedDates(" 2024-03-05 , 1709769600,,2024-03-08T15:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, []int64{
		time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC).Unix(),
		time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC).Unix(),
		time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC).Unix(),
	}, set.Sorted())

	empty, err := ParseExcludedDates("")
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
}

func TestParseWeekdays_KeepsOrderAndDropsDuplicates(t *testing.T) {
	t.Parallel()

	got, err := ParseWeekdays("Fri, monday,,fri,SUN")
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Friday, time.Monday, time.Sunday}, got)
}

func TestConfig_DecodesOptionalFieldsFromJSON(t *testing.T) {
	t.Parallel()

	var cfg Config
	payload := `{"start":1709542800,"end":1709546400,"repeat":true,"repeat_unit":"days",
		"repeat_period":1,"repeat_until":"date","repeat_until_date":null}`
	require.NoError(t, json.Unmarshal([]byte(payload), &cfg))

	assert.Equal(t, mo.Some(seedStart.Unix()), cfg.Start)
	assert.True(t, cfg.RepeatUntilDate.IsAbsent())

	_, err := Build(cfg)
	requireConfigError(t, err, "repeat_until_date")
}
