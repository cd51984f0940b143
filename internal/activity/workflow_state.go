package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/core"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/metrics"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

// WorkflowStates exposes workflow-state maintenance operations as Temporal
// activities.
type WorkflowStates struct {
	states *core.WorkflowStateService
	db     core.DB
}

func NewWorkflowStates(db core.DB) *WorkflowStates {
	return &WorkflowStates{states: core.NewWorkflowStateService(db), db: db}
}

// BulkInitializeResult holds the outcome of one module's backfill run.
type BulkInitializeResult struct {
	Module      string `json:"module"`
	Initialized int    `json:"initialized"`
	Failed      int    `json:"failed"`
}

// BulkInitializeModule backfills workflow state for a module's entities.
// A module whose organizations have no usable default template yet is not an
// error; the cron picks those entities up once a template is configured.
func (a *WorkflowStates) BulkInitializeModule(ctx context.Context, module string) (*BulkInitializeResult, error) {
	res, err := a.states.BulkInitialize(ctx, module)
	if err != nil {
		if errors.Is(err, core.ErrNoDefaultTemplate) || errors.Is(err, core.ErrNoStepsInTemplate) {
			return &BulkInitializeResult{Module: module}, nil
		}
		return nil, fmt.Errorf("bulk initialize %s: %w", module, err)
	}

	metrics.BulkInitializedTotal.WithLabelValues(module, "initialized").Add(float64(res.Initialized))
	metrics.BulkInitializedTotal.WithLabelValues(module, "failed").Add(float64(res.Failed))

	return &BulkInitializeResult{
		Module:      module,
		Initialized: res.Initialized,
		Failed:      res.Failed,
	}, nil
}

// OverdueState describes an active workflow state past its SLA deadline.
type OverdueState struct {
	ID             string    `json:"id"`
	Module         string    `json:"module"`
	EntityID       string    `json:"entity_id"`
	OrganizationID string    `json:"organization_id"`
	AssignedRole   *string   `json:"assigned_role"`
	SLADueAt       time.Time `json:"sla_due_at"`
}

// FindOverdueStates lists active states whose SLA deadline has passed. It is
// read-only reporting: overdue states keep running and transition normally.
func (a *WorkflowStates) FindOverdueStates(ctx context.Context) ([]OverdueState, error) {
	rows, err := a.db.Query(ctx,
		`SELECT id, work_order_id, safety_incident_id, organization_id, assigned_role, sla_due_at
		 FROM entity_workflow_states
		 WHERE status = $1 AND sla_due_at < now()
		 ORDER BY sla_due_at ASC`, model.WorkflowActive)
	if err != nil {
		return nil, fmt.Errorf("find overdue states: %w", err)
	}
	defer rows.Close()

	var overdue []OverdueState
	for rows.Next() {
		var o OverdueState
		var workOrderID, safetyIncidentID *string
		if err := rows.Scan(&o.ID, &workOrderID, &safetyIncidentID, &o.OrganizationID, &o.AssignedRole, &o.SLADueAt); err != nil {
			return nil, fmt.Errorf("scan overdue state: %w", err)
		}
		if workOrderID != nil {
			o.Module = model.ModuleWorkOrders
			o.EntityID = *workOrderID
		} else if safetyIncidentID != nil {
			o.Module = model.ModuleSafetyIncidents
			o.EntityID = *safetyIncidentID
		}
		overdue = append(overdue, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find overdue states: %w", err)
	}

	metrics.OverdueStates.Set(float64(len(overdue)))
	return overdue, nil
}
