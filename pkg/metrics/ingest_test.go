package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchCounterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, metric := range family.GetMetric() {
			got := map[string]string{}
			for _, pair := range metric.GetLabel() {
				got[pair.GetName()] = pair.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue metric
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func fetchHistogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		if family.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, metric := range family.GetMetric() {
			return metric.GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func TestIngestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)

	m.IncAccepted("INITIAL_BUY")
	m.IncAccepted("INITIAL_BUY")
	m.IncAccepted("RENEWAL")
	m.IncRejected("secret_mismatch")
	m.IncDuplicate()
	m.IncDelivery("success")
	m.IncDelivery("timeout")

	assert.Equal(t, float64(2), fetchCounterValue(t, reg, "notifications_accepted_total", map[string]string{"type": "INITIAL_BUY"}))
	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "notifications_accepted_total", map[string]string{"type": "RENEWAL"}))
	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "notifications_rejected_total", map[string]string{"reason": "secret_mismatch"}))
	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "notifications_duplicate_total", nil))
	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "webhook_deliveries_total", map[string]string{"outcome": "success"}))
	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "webhook_deliveries_total", map[string]string{"outcome": "timeout"}))
}

func TestIngestMetrics_ProcessDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)

	m.ObserveProcessDuration(15 * time.Millisecond)
	m.ObserveProcessDuration(250 * time.Millisecond)

	assert.Equal(t, uint64(2), fetchHistogramCount(t, reg, "notification_process_duration_seconds"))
}

func TestIngestMetrics_EmptyLabelNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)

	m.IncAccepted("")

	assert.Equal(t, float64(1), fetchCounterValue(t, reg, "notifications_accepted_total", map[string]string{"type": "unknown"}))
}

func TestIngestMetrics_NilSafe(t *testing.T) {
	var m *IngestMetrics
	m.IncAccepted("INITIAL_BUY")
	m.IncRejected("malformed_payload")
	m.IncDuplicate()
	m.IncDelivery("success")
	m.ObserveProcessDuration(time.Second)

	unregistered := NewIngestMetrics(nil)
	unregistered.IncAccepted("INITIAL_BUY")
	unregistered.ObserveProcessDuration(time.Second)
}
