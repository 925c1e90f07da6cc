package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	w := NewWorkflow(reg)

	w.Transition("NEW", "DNR1")
	w.Transition("NEW", "DNR1")
	w.Rejection("same_status")
	w.Conflict()
	w.ObserveChange("accepted", 15*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(w.transitions.WithLabelValues("NEW", "DNR1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(w.rejections.WithLabelValues("same_status")))
	assert.Equal(t, float64(1), testutil.ToFloat64(w.conflicts))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"lead_status_transitions_total",
		"lead_transition_rejections_total",
		"lead_transition_conflicts_total",
		"lead_status_change_duration_seconds",
	}, names)
}

func TestNilWorkflowIsNoop(t *testing.T) {
	var w *Workflow
	assert.NotPanics(t, func() {
		w.Transition("a", "b")
		w.Rejection("x")
		w.Conflict()
		w.ObserveChange("accepted", time.Second)
	})
}
