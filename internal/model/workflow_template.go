package model

import "time"

// Workflow modules. A template belongs to exactly one module, i.e. the
// business-entity category its workflows apply to.
const (
	ModuleWorkOrders      = "work_orders"
	ModuleSafetyIncidents = "safety_incidents"
)

// Modules lists all known workflow modules.
var Modules = []string{ModuleWorkOrders, ModuleSafetyIncidents}

type WorkflowTemplate struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Module         string    `json:"module" db:"module"`
	Description    string    `json:"description" db:"description"`
	IsDefault      bool      `json:"is_default" db:"is_default"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	Version        int       `json:"version" db:"version"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
