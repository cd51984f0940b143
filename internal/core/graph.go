package core

import (
	"fmt"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

// validateStepGraph checks a template's steps and conditions before the
// template can be activated. It flags duplicate step orders, conditions
// targeting steps outside the template, steps unreachable from the first
// step, and cycles over forward edges. Reject targets are exempt from the
// cycle check: rejects may legitimately point backward.
//
// Forward edges are the default next-in-order transition plus any
// skip_to_step condition targets.
func validateStepGraph(steps []model.WorkflowTemplateStep, conditions []model.StepCondition) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: template has no steps", ErrInvalidStepGraph)
	}

	byID := make(map[string]*model.WorkflowTemplateStep, len(steps))
	byOrder := make(map[int]string, len(steps))
	for i := range steps {
		s := &steps[i]
		byID[s.ID] = s
		if other, dup := byOrder[s.StepOrder]; dup {
			return fmt.Errorf("%w: steps %s and %s share step_order %d",
				ErrInvalidStepGraph, other, s.ID, s.StepOrder)
		}
		byOrder[s.StepOrder] = s.ID
	}

	edges := make(map[string][]string, len(steps))
	for i := range steps {
		s := &steps[i]
		if next := nextInOrder(steps, s.StepOrder); next != nil {
			edges[s.ID] = append(edges[s.ID], next.ID)
		}
		if s.RejectTargetStepID != nil {
			if _, ok := byID[*s.RejectTargetStepID]; !ok {
				return fmt.Errorf("%w: step %s reject target %s is not in the template",
					ErrInvalidStepGraph, s.ID, *s.RejectTargetStepID)
			}
		}
	}
	for i := range conditions {
		c := &conditions[i]
		if c.Action != model.ConditionSkipToStep || c.TargetStepID == nil {
			continue
		}
		if _, ok := byID[c.StepID]; !ok {
			return fmt.Errorf("%w: condition %s references step %s outside the template",
				ErrInvalidStepGraph, c.ID, c.StepID)
		}
		if _, ok := byID[*c.TargetStepID]; !ok {
			return fmt.Errorf("%w: condition %s targets step %s outside the template",
				ErrInvalidStepGraph, c.ID, *c.TargetStepID)
		}
		edges[c.StepID] = append(edges[c.StepID], *c.TargetStepID)
	}

	first := steps[0]
	for i := range steps {
		if steps[i].StepOrder < first.StepOrder {
			first = steps[i]
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	colors := make(map[string]int, len(steps))
	var visit func(id string) error
	visit = func(id string) error {
		switch colors[id] {
		case visiting:
			return fmt.Errorf("%w: cycle through step %s", ErrInvalidStepGraph, id)
		case done:
			return nil
		}
		colors[id] = visiting
		for _, next := range edges[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		colors[id] = done
		return nil
	}
	if err := visit(first.ID); err != nil {
		return err
	}

	for i := range steps {
		if colors[steps[i].ID] != done {
			return fmt.Errorf("%w: step %s (%s) is unreachable from the first step",
				ErrInvalidStepGraph, steps[i].ID, steps[i].Name)
		}
	}
	return nil
}

// nextInOrder returns the step with the smallest step_order strictly greater
// than order, or nil. Gaps in the sequence are permitted.
func nextInOrder(steps []model.WorkflowTemplateStep, order int) *model.WorkflowTemplateStep {
	var next *model.WorkflowTemplateStep
	for i := range steps {
		s := &steps[i]
		if s.StepOrder <= order {
			continue
		}
		if next == nil || s.StepOrder < next.StepOrder {
			next = s
		}
	}
	return next
}
