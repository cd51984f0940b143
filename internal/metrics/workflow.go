package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts workflow state transitions by action and outcome.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total number of workflow state transitions",
		},
		[]string{"action", "outcome"},
	)

	// BulkInitializedTotal counts bulk-backfill results per module.
	BulkInitializedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_bulk_initialized_total",
			Help: "Total number of workflow states handled by the bulk initializer",
		},
		[]string{"module", "result"},
	)

	// OverdueStates reports the number of active workflow states past their
	// SLA deadline, as of the last SLA breach check.
	OverdueStates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_states_overdue",
			Help: "Active workflow states past their SLA deadline",
		},
	)
)
