package request

type InitializeWorkflowState struct {
	Module         string `json:"module" validate:"required,module"`
	EntityID       string `json:"entity_id" validate:"required"`
	OrganizationID string `json:"organization_id" validate:"required"`
}

type TransitionWorkflowState struct {
	Action       string   `json:"action" validate:"required,oneof=advance reject"`
	ActorRoles   []string `json:"actor_roles" validate:"required,min=1"`
	Revision     int      `json:"revision" validate:"required,min=1"`
	TargetStepID *string  `json:"target_step_id"`
}

type ReassignWorkflowState struct {
	UserID     string   `json:"user_id" validate:"required"`
	ActorRoles []string `json:"actor_roles" validate:"required,min=1"`
	Revision   int      `json:"revision" validate:"required,min=1"`
}
