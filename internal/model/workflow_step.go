package model

import (
	"encoding/json"
	"time"
)

// Step approval types.
const (
	ApprovalAny  = "any"  // any eligible role may approve
	ApprovalAll  = "all"  // every primary assignee must approve
	ApprovalNone = "none" // informational step, no approval gate
)

// Condition operators. The set is closed; values outside it are rejected at
// write time so a condition can never silently no-op during evaluation.
const (
	OperatorEquals         = "equals"
	OperatorNotEquals      = "not_equals"
	OperatorGreaterThan    = "greater_than"
	OperatorLessThan       = "less_than"
	OperatorGreaterOrEqual = "greater_or_equal"
	OperatorLessOrEqual    = "less_or_equal"
	OperatorIn             = "in"
	OperatorContains       = "contains"
)

// Condition actions.
const (
	ConditionSkipToStep      = "skip_to_step"
	ConditionComplete        = "complete"
	ConditionRequireApproval = "require_approval"
)

// Auto-assign modes.
const (
	AutoAssignPrimaryRole = "primary_role"
	AutoAssignFixedUser   = "fixed_user"
)

type WorkflowTemplateStep struct {
	ID                 string          `json:"id" db:"id"`
	TemplateID         string          `json:"template_id" db:"template_id"`
	Name               string          `json:"name" db:"name"`
	StepOrder          int             `json:"step_order" db:"step_order"`
	StepType           string          `json:"step_type" db:"step_type"`
	Description        string          `json:"description" db:"description"`
	SLAHours           *int            `json:"sla_hours,omitempty" db:"sla_hours"`
	ApprovalType       string          `json:"approval_type" db:"approval_type"`
	IsRequired         bool            `json:"is_required" db:"is_required"`
	AutoAssignEnabled  bool            `json:"auto_assign_enabled" db:"auto_assign_enabled"`
	AutoAssignRule     json.RawMessage `json:"auto_assign_rule" db:"auto_assign_rule"`
	RejectTargetStepID *string         `json:"reject_target_step_id,omitempty" db:"reject_target_step_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// AutoAssignRule is the decoded shape of WorkflowTemplateStep.AutoAssignRule.
type AutoAssignRule struct {
	Mode   string `json:"mode"`
	UserID string `json:"user_id,omitempty"`
}

type StepRoleAssignment struct {
	ID                string    `json:"id" db:"id"`
	StepID            string    `json:"step_id" db:"step_id"`
	RoleName          string    `json:"role_name" db:"role_name"`
	CanApprove        bool      `json:"can_approve" db:"can_approve"`
	CanReject         bool      `json:"can_reject" db:"can_reject"`
	CanAssign         bool      `json:"can_assign" db:"can_assign"`
	CanView           bool      `json:"can_view" db:"can_view"`
	CanEdit           bool      `json:"can_edit" db:"can_edit"`
	IsPrimaryAssignee bool      `json:"is_primary_assignee" db:"is_primary_assignee"`
	IsBackupAssignee  bool      `json:"is_backup_assignee" db:"is_backup_assignee"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

type StepCondition struct {
	ID            string          `json:"id" db:"id"`
	StepID        string          `json:"step_id" db:"step_id"`
	ConditionType string          `json:"condition_type" db:"condition_type"`
	FieldName     string          `json:"field_name" db:"field_name"`
	Operator      string          `json:"operator" db:"operator"`
	Value         json.RawMessage `json:"value" db:"value"`
	Action        string          `json:"action" db:"action"`
	TargetStepID  *string         `json:"target_step_id,omitempty" db:"target_step_id"`
	Priority      int             `json:"priority" db:"priority"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
