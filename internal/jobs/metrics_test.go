package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("seed:bootstrap").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("seed:bootstrap").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("seed:bootstrap", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("seed:bootstrap", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("seed:bootstrap")))
	assert.Positive(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("seed:bootstrap")))
}

func TestSeedWrites(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddSeedWrites("laws", 24)
	m.AddSeedWrites("roles", 0)

	assert.Equal(t, 24.0, testutil.ToFloat64(m.seedWrites.WithLabelValues("laws")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.seedWrites))

	var nilMetrics *Metrics
	nilMetrics.AddSeedWrites("laws", 1)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
