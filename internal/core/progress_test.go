package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

func progressSteps() []model.WorkflowTemplateStep {
	return []model.WorkflowTemplateStep{
		{ID: "step-1", StepOrder: 1, Name: "Submitted"},
		{ID: "step-2", StepOrder: 2, Name: "Supervisor review"},
		{ID: "step-3", StepOrder: 3, Name: "Manager approval"},
		{ID: "step-4", StepOrder: 4, Name: "Closed"},
	}
}

func TestBuildProgress_MiddleStep(t *testing.T) {
	now := time.Now()
	state := &model.EntityWorkflowState{
		CurrentStepID: "step-3",
		Status:        model.WorkflowActive,
	}

	p := BuildProgress(progressSteps(), state, now)
	require.True(t, p.Found)
	assert.Equal(t, 2, p.CurrentIndex)
	assert.Equal(t, StepCompleted, p.Steps[0].Status)
	assert.Equal(t, StepCompleted, p.Steps[1].Status)
	assert.Equal(t, StepCurrent, p.Steps[2].Status)
	assert.Equal(t, StepPending, p.Steps[3].Status)
}

func TestBuildProgress_FirstStep(t *testing.T) {
	state := &model.EntityWorkflowState{CurrentStepID: "step-1", Status: model.WorkflowActive}

	p := BuildProgress(progressSteps(), state, time.Now())
	require.True(t, p.Found)
	assert.Equal(t, 0, p.CurrentIndex)
	assert.Equal(t, StepCurrent, p.Steps[0].Status)
	for _, s := range p.Steps[1:] {
		assert.Equal(t, StepPending, s.Status)
	}
}

func TestBuildProgress_CompletedWorkflow(t *testing.T) {
	state := &model.EntityWorkflowState{CurrentStepID: "step-4", Status: model.WorkflowCompleted}

	p := BuildProgress(progressSteps(), state, time.Now())
	require.True(t, p.Found)
	assert.Equal(t, 3, p.CurrentIndex)
	for _, s := range p.Steps {
		assert.Equal(t, StepCompleted, s.Status)
	}
}

func TestBuildProgress_StepNotInTemplate(t *testing.T) {
	// A state pointing at a step outside the loaded steps must yield an
	// explicit mismatch result, never an "all pending" rendering.
	state := &model.EntityWorkflowState{CurrentStepID: "step-from-other-template"}

	p := BuildProgress(progressSteps(), state, time.Now())
	assert.False(t, p.Found)
	assert.Equal(t, -1, p.CurrentIndex)
	assert.Empty(t, p.Steps)
}

func TestBuildProgress_SLA(t *testing.T) {
	now := time.Now()
	due := now.Add(3 * time.Hour)
	state := &model.EntityWorkflowState{
		CurrentStepID: "step-2",
		Status:        model.WorkflowActive,
		SLADueAt:      &due,
	}

	p := BuildProgress(progressSteps(), state, now)
	require.True(t, p.Found)
	assert.Equal(t, model.SLAAtRisk, p.SLAStatus)
	assert.Equal(t, "3h remaining", p.SLALabel)
}
