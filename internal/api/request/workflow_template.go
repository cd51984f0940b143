package request

type CreateWorkflowTemplate struct {
	Name           string `json:"name" validate:"required,max=256"`
	Module         string `json:"module" validate:"required,module"`
	Description    string `json:"description"`
	IsDefault      bool   `json:"is_default"`
	OrganizationID string `json:"organization_id" validate:"required"`
}

type UpdateWorkflowTemplate struct {
	Name        *string `json:"name" validate:"omitempty,max=256"`
	Description *string `json:"description"`
}
