// Package metrics holds the Prometheus collectors for the lead workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Workflow records lead status transition outcomes.
type Workflow struct {
	transitions    *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	conflicts      prometheus.Counter
	changeDuration *prometheus.HistogramVec
}

// NewWorkflow creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	w := &Workflow{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_status_transitions_total",
				Help: "Accepted lead status transitions.",
			},
			[]string{"from", "to"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_transition_rejections_total",
				Help: "Lead status transitions refused by business rules.",
			},
			[]string{"reason"},
		),
		conflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lead_transition_conflicts_total",
				Help: "Lead writes that lost an optimistic concurrency race.",
			},
		),
		changeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lead_status_change_duration_seconds",
				Help:    "Time spent handling a status change request.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(w.transitions, w.rejections, w.conflicts, w.changeDuration)
	}
	return w
}

// Transition counts an accepted move.
func (w *Workflow) Transition(from, to string) {
	if w == nil {
		return
	}
	w.transitions.WithLabelValues(from, to).Inc()
}

// Rejection counts a refused move by rejection code.
func (w *Workflow) Rejection(code string) {
	if w == nil {
		return
	}
	w.rejections.WithLabelValues(code).Inc()
}

// Conflict counts a stale-version write.
func (w *Workflow) Conflict() {
	if w == nil {
		return
	}
	w.conflicts.Inc()
}

// ObserveChange records how long a status change took, labeled by outcome.
func (w *Workflow) ObserveChange(outcome string, d time.Duration) {
	if w == nil {
		return
	}
	w.changeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
