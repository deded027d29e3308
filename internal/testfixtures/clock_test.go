package testfixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	assert.True(t, NewClock(time.Time{}).Now().Equal(ReferenceTime()))
}

func TestClockAdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)
	nowFn := clock.NowFunc()

	assert.Equal(t, start.Add(90*time.Minute), clock.Advance(90*time.Minute))
	assert.Equal(t, clock.Now(), nowFn())

	clock.Set(start.Add(2 * time.Hour))
	assert.Equal(t, start.Add(2*time.Hour), nowFn())
}

func TestClockNilNowFunc(t *testing.T) {
	t.Parallel()

	var clock *Clock
	assert.WithinDuration(t, time.Now(), clock.NowFunc()(), time.Second)
}
