package model

import "time"

// Workflow state statuses.
const (
	WorkflowActive    = "active"
	WorkflowCompleted = "completed"
)

// Transition actions.
const (
	ActionAdvance  = "advance"
	ActionReject   = "reject"
	ActionReassign = "reassign"
)

// SLA statuses.
const (
	SLAOnTime  = "on_time"
	SLAAtRisk  = "at_risk"
	SLAOverdue = "overdue"
)

// EntityWorkflowState is the live workflow instance bound 1:1 to one business
// entity. Exactly one of WorkOrderID / SafetyIncidentID is set. Revision is an
// optimistic concurrency token: every write compares and increments it.
type EntityWorkflowState struct {
	ID               string     `json:"id" db:"id"`
	TemplateID       string     `json:"template_id" db:"template_id"`
	CurrentStepID    string     `json:"current_step_id" db:"current_step_id"`
	WorkOrderID      *string    `json:"work_order_id,omitempty" db:"work_order_id"`
	SafetyIncidentID *string    `json:"safety_incident_id,omitempty" db:"safety_incident_id"`
	Status           string     `json:"status" db:"status"`
	AssignedToUserID *string    `json:"assigned_to_user_id,omitempty" db:"assigned_to_user_id"`
	AssignedRole     *string    `json:"assigned_role,omitempty" db:"assigned_role"`
	SLADueAt         *time.Time `json:"sla_due_at,omitempty" db:"sla_due_at"`
	Revision         int        `json:"revision" db:"revision"`
	OrganizationID   string     `json:"organization_id" db:"organization_id"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// EntityID returns the ID of whichever entity the state is bound to.
func (s *EntityWorkflowState) EntityID() string {
	if s.WorkOrderID != nil {
		return *s.WorkOrderID
	}
	if s.SafetyIncidentID != nil {
		return *s.SafetyIncidentID
	}
	return ""
}

// Module returns the workflow module the state belongs to.
func (s *EntityWorkflowState) Module() string {
	if s.WorkOrderID != nil {
		return ModuleWorkOrders
	}
	return ModuleSafetyIncidents
}
