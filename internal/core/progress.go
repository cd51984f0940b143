package core

import (
	"time"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

// Progress step statuses.
const (
	StepCompleted = "completed"
	StepCurrent   = "current"
	StepPending   = "pending"
)

// ProgressStep is one step annotated with its position relative to the
// workflow state's current step.
type ProgressStep struct {
	model.WorkflowTemplateStep
	Status string `json:"status"`
}

// Progress is the read-side projection used to render workflow position.
// Found is false when the state's current step is not among the given steps
// (template/state mismatch); callers must not render a mismatch as "all
// pending".
type Progress struct {
	Found        bool           `json:"found"`
	Steps        []ProgressStep `json:"steps"`
	CurrentIndex int            `json:"current_index"`
	SLAStatus    string         `json:"sla_status"`
	SLALabel     string         `json:"sla_label"`
}

// BuildProgress projects ordered template steps and a workflow state into a
// Progress. Pure: no I/O.
func BuildProgress(steps []model.WorkflowTemplateStep, state *model.EntityWorkflowState, now time.Time) Progress {
	idx := -1
	for i := range steps {
		if steps[i].ID == state.CurrentStepID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return Progress{Found: false, Steps: []ProgressStep{}, CurrentIndex: -1}
	}

	sla := SLAStatusAt(state.SLADueAt, now)
	out := Progress{
		Found:        true,
		Steps:        make([]ProgressStep, len(steps)),
		CurrentIndex: idx,
		SLAStatus:    sla.Status,
		SLALabel:     sla.Label,
	}
	for i := range steps {
		status := StepPending
		switch {
		case state.Status == model.WorkflowCompleted:
			status = StepCompleted
		case i < idx:
			status = StepCompleted
		case i == idx:
			status = StepCurrent
		}
		out.Steps[i] = ProgressStep{WorkflowTemplateStep: steps[i], Status: status}
	}
	return out
}
