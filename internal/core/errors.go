package core

import "errors"

// Domain errors surfaced to callers. Handlers map these to HTTP statuses;
// they are never swallowed.
var (
	// ErrNotFound indicates a missing template, step, or workflow state.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the actor's roles lack the capability required
	// for the requested action on the current step.
	ErrUnauthorized = errors.New("actor roles lack required capability")

	// ErrNoRejectTarget indicates a reject on a step without a reject target.
	ErrNoRejectTarget = errors.New("step has no reject target")

	// ErrNoDefaultTemplate indicates no default, active template exists for
	// the module.
	ErrNoDefaultTemplate = errors.New("no default active template for module")

	// ErrNoStepsInTemplate indicates the template has no steps.
	ErrNoStepsInTemplate = errors.New("template has no steps")

	// ErrTemplateStepMismatch indicates a step that does not belong to the
	// workflow state's template.
	ErrTemplateStepMismatch = errors.New("step does not belong to state template")

	// ErrConcurrentModification indicates a stale revision: the state was
	// modified between the caller's read and write. Re-read and retry.
	ErrConcurrentModification = errors.New("workflow state was concurrently modified")

	// ErrWorkflowCompleted indicates a transition on an already-completed
	// workflow.
	ErrWorkflowCompleted = errors.New("workflow already completed")

	// ErrInvalidStepGraph indicates the template's step graph failed
	// validation (duplicate orders, dangling targets, cycles, unreachable
	// steps).
	ErrInvalidStepGraph = errors.New("invalid step graph")

	// ErrInvalidInput indicates a write-time validation failure on a step,
	// role assignment, or condition.
	ErrInvalidInput = errors.New("invalid input")
)
