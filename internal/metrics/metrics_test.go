package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Records(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRegeneration(ResultSuccess, 20*time.Millisecond, 12)
	m.ObserveRegeneration(ResultSuccess, 10*time.Millisecond, 0)
	m.ObserveRegeneration(ResultFailure, time.Millisecond, 0)
	m.Skipped("resource_not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.regenerations.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.regenerations.WithLabelValues(ResultFailure)))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.sessionsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipped.WithLabelValues("resource_not_found")))

	count, err := testutil.GatherAndCount(reg, "sessiongen_regeneration_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRegeneration(ResultSuccess, time.Second, 3)
		m.Skipped("x")
	})
}
