// Package metrics declares the console's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the engine and reminder service report to.
type Metrics struct {
	// PollCycles counts reconciliation poll cycles by result ("ok"/"error").
	PollCycles *prometheus.CounterVec

	// EventsApplied counts alert events merged into the console state, by
	// mode ("auto"/"manual").
	EventsApplied *prometheus.CounterVec

	// Decisions counts operator confirm/cancel decisions by action and
	// result.
	Decisions *prometheus.CounterVec

	// Uploads counts manual upload batches by result.
	Uploads *prometheus.CounterVec

	// ReminderActions counts reminder toggles, pauses and sends by action
	// and result.
	ReminderActions *prometheus.CounterVec

	// DigestActions counts digest previews, schedule updates and immediate
	// sends by action and result.
	DigestActions *prometheus.CounterVec

	// PendingDepth is the size of the pending-operations queue after the
	// latest refresh.
	PendingDepth prometheus.Gauge

	// GatewayLatency observes gateway round-trip time by endpoint.
	GatewayLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "poll_cycles_total",
			Help:      "Reconciliation poll cycles by result.",
		}, []string{"result"}),
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "events_applied_total",
			Help:      "Alert events merged into console state, by mode.",
		}, []string{"mode"}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "decisions_total",
			Help:      "Operator confirm/cancel decisions.",
		}, []string{"action", "result"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "uploads_total",
			Help:      "Manual upload batches by result.",
		}, []string{"result"}),
		ReminderActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "reminder_actions_total",
			Help:      "Invoice reminder actions by action and result.",
		}, []string{"action", "result"}),
		DigestActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "colops",
			Name:      "digest_actions_total",
			Help:      "Daily digest actions by action and result.",
		}, []string{"action", "result"}),
		PendingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "colops",
			Name:      "pending_queue_depth",
			Help:      "Pending operations awaiting a decision.",
		}),
		GatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "colops",
			Name:      "gateway_latency_seconds",
			Help:      "Gateway round-trip time by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	reg.MustRegister(
		m.PollCycles,
		m.EventsApplied,
		m.Decisions,
		m.Uploads,
		m.ReminderActions,
		m.DigestActions,
		m.PendingDepth,
		m.GatewayLatency,
	)
	return m
}

// NewUnregistered creates collectors without registering them, for tests that
// only need the engine's bookkeeping side effects.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
