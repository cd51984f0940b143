package request

import "encoding/json"

type AddWorkflowStep struct {
	Name               string          `json:"name" validate:"required,max=256"`
	StepOrder          int             `json:"step_order" validate:"required,min=1"`
	StepType           string          `json:"step_type"`
	Description        string          `json:"description"`
	SLAHours           *int            `json:"sla_hours" validate:"omitempty,min=1"`
	ApprovalType       string          `json:"approval_type" validate:"required,oneof=any all none"`
	IsRequired         bool            `json:"is_required"`
	AutoAssignEnabled  bool            `json:"auto_assign_enabled"`
	AutoAssignRule     json.RawMessage `json:"auto_assign_rule"`
	RejectTargetStepID *string         `json:"reject_target_step_id"`
}

type UpdateWorkflowStep struct {
	Name               *string `json:"name" validate:"omitempty,max=256"`
	Description        *string `json:"description"`
	SLAHours           *int    `json:"sla_hours" validate:"omitempty,min=1"`
	RejectTargetStepID *string `json:"reject_target_step_id"`
}

type AddRoleAssignment struct {
	RoleName          string `json:"role_name" validate:"required,rolename"`
	CanApprove        bool   `json:"can_approve"`
	CanReject         bool   `json:"can_reject"`
	CanAssign         bool   `json:"can_assign"`
	CanView           bool   `json:"can_view"`
	CanEdit           bool   `json:"can_edit"`
	IsPrimaryAssignee bool   `json:"is_primary_assignee"`
	IsBackupAssignee  bool   `json:"is_backup_assignee"`
}

type AddStepCondition struct {
	ConditionType string          `json:"condition_type"`
	FieldName     string          `json:"field_name" validate:"required"`
	Operator      string          `json:"operator" validate:"required,oneof=equals not_equals greater_than less_than greater_or_equal less_or_equal in contains"`
	Value         json.RawMessage `json:"value" validate:"required"`
	Action        string          `json:"action" validate:"required,oneof=skip_to_step complete require_approval"`
	TargetStepID  *string         `json:"target_step_id"`
	Priority      int             `json:"priority" validate:"min=0"`
}
