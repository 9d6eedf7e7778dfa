package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRecordPublishSuccessIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPublishSuccess("facebook")
	c.RecordPublishSuccess("facebook")
	c.RecordPublishSuccess("twitter")

	assert.Equal(t, float64(3), counterValue(t, reg, "socialorchestrator_publish_success_total"))
}

func TestRecordPublishFailuresAreSeparatedByTier(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPublishBusinessFailure("linkedin")
	c.RecordPublishTransientFailure("linkedin")
	c.RecordPublishTransientFailure("linkedin")

	assert.Equal(t, float64(1), counterValue(t, reg, "socialorchestrator_publish_business_failure_total"))
	assert.Equal(t, float64(2), counterValue(t, reg, "socialorchestrator_publish_transient_failure_total"))
}

func TestRecordTokenRefreshCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenRefreshed()
	c.RecordTokenRefreshFailed()
	c.RecordTokenRefreshFailed()

	assert.Equal(t, float64(1), counterValue(t, reg, "socialorchestrator_token_refreshed_total"))
	assert.Equal(t, float64(2), counterValue(t, reg, "socialorchestrator_token_refresh_failed_total"))
}
