package model

import "time"

// Safety incident severities.
const (
	IncidentSeverityCritical = "critical"
	IncidentSeverityMajor    = "major"
	IncidentSeverityMinor    = "minor"
)

// SafetyIncident is the subset of the incident record the workflow core reads.
type SafetyIncident struct {
	ID             string    `json:"id" db:"id"`
	OrganizationID string    `json:"organization_id" db:"organization_id"`
	Title          string    `json:"title" db:"title"`
	Status         string    `json:"status" db:"status"`
	Severity       string    `json:"severity" db:"severity"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
