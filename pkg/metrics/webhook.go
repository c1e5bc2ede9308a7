package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records payment webhook processing outcomes.
type WebhookMetrics struct {
	duration *prometheus.HistogramVec
	events   *prometheus.CounterVec
	orders   prometheus.Counter
	emails   *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_duration_seconds",
		Help:    "Duration of webhook event processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Processed webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created from paid checkout sessions.",
	})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Email delivery attempts by kind and outcome.",
	}, []string{"kind", "outcome"})
	reg.MustRegister(duration, events, orders, emails)
	return &WebhookMetrics{
		duration: duration,
		events:   events,
		orders:   orders,
		emails:   emails,
	}
}

// ObserveDuration records the processing time for an event type.
func (m *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncEvent increments the event counter for the type/outcome pair.
func (m *WebhookMetrics) IncEvent(eventType, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}

// IncOrderCreated increments the created-orders counter.
func (m *WebhookMetrics) IncOrderCreated() {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.Inc()
}

// IncEmail increments the email counter for the kind/outcome pair.
func (m *WebhookMetrics) IncEmail(kind, outcome string) {
	if m == nil || m.emails == nil {
		return
	}
	m.emails.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
