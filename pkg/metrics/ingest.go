package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records counters for the notification pipeline and the
// webhook dispatcher.
type IngestMetrics struct {
	accepted   *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	duplicates prometheus.Counter
	deliveries *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewIngestMetrics registers the pipeline metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_accepted_total",
		Help: "Accepted notifications by type.",
	}, []string{"type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_rejected_total",
		Help: "Rejected notifications by reason.",
	}, []string{"reason"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_duplicate_total",
		Help: "Redelivered notifications suppressed by the idempotency check.",
	})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook delivery attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notification_process_duration_seconds",
		Help:    "Duration of pipeline Process calls in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(accepted, rejected, duplicates, deliveries, duration)
	return &IngestMetrics{
		accepted:   accepted,
		rejected:   rejected,
		duplicates: duplicates,
		deliveries: deliveries,
		duration:   duration,
	}
}

// IncAccepted increments the accepted counter for the given type.
func (m *IngestMetrics) IncAccepted(notificationType string) {
	if m == nil || m.accepted == nil {
		return
	}
	m.accepted.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncRejected increments the rejected counter for the given reason.
func (m *IngestMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncDuplicate counts one idempotency-suppressed redelivery.
func (m *IngestMetrics) IncDuplicate() {
	if m == nil || m.duplicates == nil {
		return
	}
	m.duplicates.Inc()
}

// IncDelivery increments the delivery counter for the given outcome.
func (m *IngestMetrics) IncDelivery(outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveProcessDuration records one pipeline invocation duration.
func (m *IngestMetrics) ObserveProcessDuration(duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
