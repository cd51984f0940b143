package core

import (
	"fmt"
	"time"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

// atRiskWindow is how close to the SLA deadline a step is considered at risk.
const atRiskWindow = 6 * time.Hour

// SLAInfo is the computed SLA position of a workflow state at a point in time.
type SLAInfo struct {
	Status string `json:"status"`
	Label  string `json:"label"`
}

// SLAStatusAt computes the SLA status and display label for a due timestamp
// relative to now. Pure: no I/O, no clock reads. Hours and minutes in labels
// are floored, not rounded.
func SLAStatusAt(dueAt *time.Time, now time.Time) SLAInfo {
	if dueAt == nil {
		return SLAInfo{Status: model.SLAOnTime, Label: "No SLA"}
	}

	remaining := dueAt.Sub(now)
	if remaining < 0 {
		hours := int((-remaining).Hours())
		return SLAInfo{
			Status: model.SLAOverdue,
			Label:  fmt.Sprintf("Overdue by %dh", hours),
		}
	}

	var label string
	if remaining < time.Hour {
		label = fmt.Sprintf("%dm remaining", int(remaining.Minutes()))
	} else {
		label = fmt.Sprintf("%dh remaining", int(remaining.Hours()))
	}

	status := model.SLAOnTime
	if remaining < atRiskWindow {
		status = model.SLAAtRisk
	}
	return SLAInfo{Status: status, Label: label}
}

// slaDueFor returns the SLA deadline for landing on a step at the given time,
// or nil if the step defines no SLA hours.
func slaDueFor(step *model.WorkflowTemplateStep, now time.Time) *time.Time {
	if step.SLAHours == nil {
		return nil
	}
	due := now.Add(time.Duration(*step.SLAHours) * time.Hour)
	return &due
}
