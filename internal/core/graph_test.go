package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

func graphSteps(orders ...int) []model.WorkflowTemplateStep {
	steps := make([]model.WorkflowTemplateStep, len(orders))
	for i, o := range orders {
		steps[i] = model.WorkflowTemplateStep{
			ID:         stepID(i + 1),
			TemplateID: "tmpl-1",
			Name:       "step",
			StepOrder:  o,
		}
	}
	return steps
}

func stepID(n int) string {
	return map[int]string{1: "s1", 2: "s2", 3: "s3", 4: "s4"}[n]
}

func skipCond(from, to string) model.StepCondition {
	return model.StepCondition{
		ID:           "cond-" + from + "-" + to,
		StepID:       from,
		FieldName:    "priority",
		Operator:     model.OperatorEquals,
		Value:        json.RawMessage(`"high"`),
		Action:       model.ConditionSkipToStep,
		TargetStepID: &to,
	}
}

func TestValidateStepGraph_LinearOK(t *testing.T) {
	assert.NoError(t, validateStepGraph(graphSteps(1, 2, 3), nil))
}

func TestValidateStepGraph_GapsInOrderOK(t *testing.T) {
	assert.NoError(t, validateStepGraph(graphSteps(1, 5, 10), nil))
}

func TestValidateStepGraph_ForwardSkipOK(t *testing.T) {
	conds := []model.StepCondition{skipCond("s1", "s3")}
	assert.NoError(t, validateStepGraph(graphSteps(1, 2, 3), conds))
}

func TestValidateStepGraph_Empty(t *testing.T) {
	err := validateStepGraph(nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
}

func TestValidateStepGraph_DuplicateOrder(t *testing.T) {
	err := validateStepGraph(graphSteps(1, 2, 2), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
	assert.Contains(t, err.Error(), "step_order")
}

func TestValidateStepGraph_BackwardSkipIsCycle(t *testing.T) {
	// s3 skips back to s1: the forward chain s1->s2->s3 plus the skip edge
	// forms a loop.
	conds := []model.StepCondition{skipCond("s3", "s1")}
	err := validateStepGraph(graphSteps(1, 2, 3), conds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
	assert.Contains(t, err.Error(), "cycle")
}

func TestValidateStepGraph_BackwardRejectTargetOK(t *testing.T) {
	steps := graphSteps(1, 2, 3)
	first := steps[0].ID
	steps[2].RejectTargetStepID = &first
	assert.NoError(t, validateStepGraph(steps, nil))
}

func TestValidateStepGraph_DanglingRejectTarget(t *testing.T) {
	steps := graphSteps(1, 2)
	other := "step-in-another-template"
	steps[1].RejectTargetStepID = &other
	err := validateStepGraph(steps, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
}

func TestValidateStepGraph_SkipTargetOutsideTemplate(t *testing.T) {
	conds := []model.StepCondition{skipCond("s1", "step-in-another-template")}
	err := validateStepGraph(graphSteps(1, 2), conds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStepGraph)
}

func TestNextInOrder(t *testing.T) {
	steps := graphSteps(1, 5, 10)

	next := nextInOrder(steps, 1)
	require.NotNil(t, next)
	assert.Equal(t, 5, next.StepOrder)

	next = nextInOrder(steps, 5)
	require.NotNil(t, next)
	assert.Equal(t, 10, next.StepOrder)

	assert.Nil(t, nextInOrder(steps, 10))
}
