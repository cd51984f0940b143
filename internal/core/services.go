package core

type Services struct {
	Template *TemplateService
	Step     *StepService
	State    *WorkflowStateService
	APIKey   *APIKeyService
}

func NewServices(db DB) *Services {
	return &Services{
		Template: NewTemplateService(db),
		Step:     NewStepService(db),
		State:    NewWorkflowStateService(db),
		APIKey:   NewAPIKeyService(db),
	}
}
