package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.ValidationsTotal.WithLabelValues(OutcomeOK).Inc()
	m.CacheLookups.WithLabelValues("hit").Add(2)
	m.Scores.Observe(85)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ValidationsTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_api_validations_total")
	assert.Contains(t, names, "test_cache_lookups_total")
	assert.Contains(t, names, "test_result_score")
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("dup", prometheus.NewRegistry())
		NewMetrics("dup", prometheus.NewRegistry())
	})
}
