package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/platform"
)

const stateColumns = `id, template_id, current_step_id, work_order_id, safety_incident_id,
	status, assigned_to_user_id, assigned_role, sla_due_at, revision,
	organization_id, completed_at, created_at, updated_at`

// WorkflowStateService owns entity workflow state rows: initialization, the
// transition engine, reassignment, and the progress projection.
type WorkflowStateService struct {
	db DB
}

func NewWorkflowStateService(db DB) *WorkflowStateService {
	return &WorkflowStateService{db: db}
}

func scanState(row interface{ Scan(dest ...any) error }) (model.EntityWorkflowState, error) {
	var st model.EntityWorkflowState
	err := row.Scan(&st.ID, &st.TemplateID, &st.CurrentStepID, &st.WorkOrderID,
		&st.SafetyIncidentID, &st.Status, &st.AssignedToUserID, &st.AssignedRole,
		&st.SLADueAt, &st.Revision, &st.OrganizationID, &st.CompletedAt,
		&st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func entityColumn(module string) string {
	if module == model.ModuleWorkOrders {
		return "work_order_id"
	}
	return "safety_incident_id"
}

func entityTable(module string) string {
	if module == model.ModuleWorkOrders {
		return "work_orders"
	}
	return "safety_incidents"
}

// Initialize creates the workflow state for a new entity at the first step of
// the module's default active template. Idempotent: if a state row already
// exists for the entity, the existing row is returned. Entity-creation
// callers treat any error here as log-and-continue; the bulk initializer is
// the recovery path.
func (s *WorkflowStateService) Initialize(ctx context.Context, module, entityID, organizationID string) (*model.EntityWorkflowState, error) {
	tmpl, err := scanTemplate(s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates
		 WHERE module = $1 AND organization_id = $2 AND is_default AND is_active`,
		module, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDefaultTemplate
		}
		return nil, fmt.Errorf("find default template: %w", err)
	}

	first, err := scanStep(s.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_template_steps
		 WHERE template_id = $1 ORDER BY step_order ASC LIMIT 1`, tmpl.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoStepsInTemplate
		}
		return nil, fmt.Errorf("find first step: %w", err)
	}

	now := time.Now()
	st := model.EntityWorkflowState{
		ID:             platform.NewID(),
		TemplateID:     tmpl.ID,
		CurrentStepID:  first.ID,
		Status:         model.WorkflowActive,
		SLADueAt:       slaDueFor(&first, now),
		Revision:       1,
		OrganizationID: organizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if module == model.ModuleWorkOrders {
		st.WorkOrderID = &entityID
	} else {
		st.SafetyIncidentID = &entityID
	}
	if err := s.applyAutoAssign(ctx, &first, &st); err != nil {
		return nil, err
	}

	// The per-entity unique indexes are partial; the conflict target must
	// repeat the index predicate or Postgres will not infer them as arbiters.
	col := entityColumn(module)
	tag, err := s.db.Exec(ctx,
		`INSERT INTO entity_workflow_states (`+stateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (`+col+`) WHERE `+col+` IS NOT NULL DO NOTHING`,
		st.ID, st.TemplateID, st.CurrentStepID, st.WorkOrderID, st.SafetyIncidentID,
		st.Status, st.AssignedToUserID, st.AssignedRole, st.SLADueAt, st.Revision,
		st.OrganizationID, st.CompletedAt, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("initialize workflow state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Entity already has state; return the existing row.
		return s.GetByEntity(ctx, module, entityID)
	}
	return &st, nil
}

func (s *WorkflowStateService) GetByID(ctx context.Context, id string) (*model.EntityWorkflowState, error) {
	st, err := scanState(s.db.QueryRow(ctx,
		`SELECT `+stateColumns+` FROM entity_workflow_states WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get workflow state %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get workflow state %s: %w", id, err)
	}
	return &st, nil
}

func (s *WorkflowStateService) GetByEntity(ctx context.Context, module, entityID string) (*model.EntityWorkflowState, error) {
	st, err := scanState(s.db.QueryRow(ctx,
		`SELECT `+stateColumns+` FROM entity_workflow_states WHERE `+entityColumn(module)+` = $1`,
		entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get workflow state for %s %s: %w", module, entityID, ErrNotFound)
		}
		return nil, fmt.Errorf("get workflow state for %s %s: %w", module, entityID, err)
	}
	return &st, nil
}

// Transition applies an advance or reject to a workflow state.
//
// The actor must hold a role with the matching capability on the current
// step. For advance, the current step's conditions are evaluated in priority
// order against the entity's field values before falling back to the next
// step in step_order; exhausting the order completes the workflow. For
// reject, the current step's reject target is used. revision is the caller's
// last-read revision; a mismatch fails with ErrConcurrentModification and
// the caller re-reads and retries.
func (s *WorkflowStateService) Transition(ctx context.Context, stateID, action string, actorRoles []string, revision int, targetStepID *string) (*model.EntityWorkflowState, error) {
	st, err := s.GetByID(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if st.Status == model.WorkflowCompleted {
		return nil, ErrWorkflowCompleted
	}
	if revision != st.Revision {
		return nil, ErrConcurrentModification
	}

	cur, err := scanStep(s.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_template_steps WHERE id = $1`, st.CurrentStepID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("current step %s: %w", st.CurrentStepID, ErrNotFound)
		}
		return nil, fmt.Errorf("load current step: %w", err)
	}
	if cur.TemplateID != st.TemplateID {
		return nil, ErrTemplateStepMismatch
	}

	assignments, err := listRoleAssignments(ctx, s.db, cur.ID)
	if err != nil {
		return nil, err
	}
	if err := authorize(action, actorRoles, assignments); err != nil {
		return nil, err
	}

	var target *model.WorkflowTemplateStep
	complete := false

	switch action {
	case model.ActionAdvance:
		target, complete, err = s.resolveAdvanceTarget(ctx, st, &cur, targetStepID)
		if err != nil {
			return nil, err
		}
	case model.ActionReject:
		if cur.RejectTargetStepID == nil {
			return nil, ErrNoRejectTarget
		}
		t, err := scanStep(s.db.QueryRow(ctx,
			`SELECT `+stepColumns+` FROM workflow_template_steps WHERE id = $1`, *cur.RejectTargetStepID))
		if err != nil {
			return nil, fmt.Errorf("load reject target: %w", err)
		}
		target = &t
	default:
		return nil, fmt.Errorf("unknown transition action %q", action)
	}

	now := time.Now()
	if complete {
		return s.writeCompletion(ctx, st, now)
	}
	if target.TemplateID != st.TemplateID {
		return nil, ErrTemplateStepMismatch
	}
	return s.writeTransition(ctx, st, target, now)
}

// resolveAdvanceTarget picks where an advance lands: an explicit override, the
// first matching condition's action, or the next step in order. A nil step
// with complete=true means the workflow is done.
func (s *WorkflowStateService) resolveAdvanceTarget(ctx context.Context, st *model.EntityWorkflowState, cur *model.WorkflowTemplateStep, override *string) (*model.WorkflowTemplateStep, bool, error) {
	if override != nil {
		t, err := scanStep(s.db.QueryRow(ctx,
			`SELECT `+stepColumns+` FROM workflow_template_steps WHERE id = $1`, *override))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, false, fmt.Errorf("target step %s: %w", *override, ErrNotFound)
			}
			return nil, false, fmt.Errorf("load target step: %w", err)
		}
		return &t, false, nil
	}

	conditions, err := listConditions(ctx, s.db, cur.ID)
	if err != nil {
		return nil, false, err
	}
	if len(conditions) > 0 {
		fields, err := s.entityFields(ctx, st)
		if err != nil {
			return nil, false, err
		}
		if match := evaluateConditions(conditions, fields); match != nil {
			switch match.Action {
			case model.ConditionSkipToStep:
				if match.TargetStepID == nil {
					return nil, false, fmt.Errorf("condition %s: skip_to_step without target step", match.ID)
				}
				t, err := scanStep(s.db.QueryRow(ctx,
					`SELECT `+stepColumns+` FROM workflow_template_steps WHERE id = $1`, *match.TargetStepID))
				if err != nil {
					return nil, false, fmt.Errorf("load condition target: %w", err)
				}
				return &t, false, nil
			case model.ConditionComplete:
				return nil, true, nil
			}
			// require_approval falls through to the default transition.
		}
	}

	next, err := scanStep(s.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_template_steps
		 WHERE template_id = $1 AND step_order > $2
		 ORDER BY step_order ASC LIMIT 1`,
		st.TemplateID, cur.StepOrder))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("find next step: %w", err)
	}
	return &next, false, nil
}

// entityFields loads the bound entity's current row as a JSON object for
// condition evaluation.
func (s *WorkflowStateService) entityFields(ctx context.Context, st *model.EntityWorkflowState) (map[string]any, error) {
	table := entityTable(st.Module())
	var raw json.RawMessage
	err := s.db.QueryRow(ctx,
		`SELECT to_jsonb(t) FROM `+table+` t WHERE id = $1`, st.EntityID()).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", st.EntityID(), ErrNotFound)
		}
		return nil, fmt.Errorf("load entity fields: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode entity fields: %w", err)
	}
	return fields, nil
}

func authorize(action string, actorRoles []string, assignments []model.StepRoleAssignment) error {
	allowed := func(ra *model.StepRoleAssignment) bool {
		switch action {
		case model.ActionAdvance:
			return ra.CanApprove
		case model.ActionReject:
			return ra.CanReject
		case model.ActionReassign:
			return ra.CanAssign
		}
		return false
	}
	for _, role := range actorRoles {
		for i := range assignments {
			if assignments[i].RoleName == role && allowed(&assignments[i]) {
				return nil
			}
		}
	}
	return ErrUnauthorized
}

// applyAutoAssign sets the state's assignment fields from the target step's
// auto-assign rule. When disabled, the previous assignment is left as is.
func (s *WorkflowStateService) applyAutoAssign(ctx context.Context, step *model.WorkflowTemplateStep, st *model.EntityWorkflowState) error {
	if !step.AutoAssignEnabled {
		return nil
	}
	var rule model.AutoAssignRule
	if err := json.Unmarshal(step.AutoAssignRule, &rule); err != nil {
		return fmt.Errorf("decode auto_assign_rule: %w", err)
	}
	switch rule.Mode {
	case model.AutoAssignFixedUser:
		uid := rule.UserID
		st.AssignedToUserID = &uid
		st.AssignedRole = nil
	case model.AutoAssignPrimaryRole:
		assignments, err := listRoleAssignments(ctx, s.db, step.ID)
		if err != nil {
			return err
		}
		st.AssignedToUserID = nil
		st.AssignedRole = nil
		for i := range assignments {
			if assignments[i].IsPrimaryAssignee {
				role := assignments[i].RoleName
				st.AssignedRole = &role
				break
			}
		}
	}
	return nil
}

// writeTransition lands the state on target with a compare-and-swap on
// revision. Exactly one persisted write.
func (s *WorkflowStateService) writeTransition(ctx context.Context, st *model.EntityWorkflowState, target *model.WorkflowTemplateStep, now time.Time) (*model.EntityWorkflowState, error) {
	updated := *st
	updated.CurrentStepID = target.ID
	updated.SLADueAt = slaDueFor(target, now)
	updated.UpdatedAt = now
	if err := s.applyAutoAssign(ctx, target, &updated); err != nil {
		return nil, err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE entity_workflow_states
		 SET current_step_id = $1, sla_due_at = $2, assigned_to_user_id = $3,
		     assigned_role = $4, revision = revision + 1, updated_at = $5
		 WHERE id = $6 AND revision = $7`,
		updated.CurrentStepID, updated.SLADueAt, updated.AssignedToUserID,
		updated.AssignedRole, now, st.ID, st.Revision)
	if err != nil {
		return nil, fmt.Errorf("apply transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConcurrentModification
	}
	updated.Revision = st.Revision + 1
	return &updated, nil
}

func (s *WorkflowStateService) writeCompletion(ctx context.Context, st *model.EntityWorkflowState, now time.Time) (*model.EntityWorkflowState, error) {
	tag, err := s.db.Exec(ctx,
		`UPDATE entity_workflow_states
		 SET status = $1, completed_at = $2, sla_due_at = NULL,
		     revision = revision + 1, updated_at = $2
		 WHERE id = $3 AND revision = $4`,
		model.WorkflowCompleted, now, st.ID, st.Revision)
	if err != nil {
		return nil, fmt.Errorf("complete workflow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConcurrentModification
	}

	updated := *st
	updated.Status = model.WorkflowCompleted
	updated.CompletedAt = &now
	updated.SLADueAt = nil
	updated.Revision = st.Revision + 1
	updated.UpdatedAt = now
	return &updated, nil
}

// Reassign sets the state's assignee. The actor needs can_assign on the
// current step. Same revision compare-and-swap as transitions.
func (s *WorkflowStateService) Reassign(ctx context.Context, stateID, userID string, actorRoles []string, revision int) (*model.EntityWorkflowState, error) {
	st, err := s.GetByID(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if st.Status == model.WorkflowCompleted {
		return nil, ErrWorkflowCompleted
	}
	if revision != st.Revision {
		return nil, ErrConcurrentModification
	}

	assignments, err := listRoleAssignments(ctx, s.db, st.CurrentStepID)
	if err != nil {
		return nil, err
	}
	if err := authorize(model.ActionReassign, actorRoles, assignments); err != nil {
		return nil, err
	}

	now := time.Now()
	tag, err := s.db.Exec(ctx,
		`UPDATE entity_workflow_states
		 SET assigned_to_user_id = $1, assigned_role = NULL,
		     revision = revision + 1, updated_at = $2
		 WHERE id = $3 AND revision = $4`,
		userID, now, stateID, revision)
	if err != nil {
		return nil, fmt.Errorf("reassign workflow state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrConcurrentModification
	}

	updated := *st
	updated.AssignedToUserID = &userID
	updated.AssignedRole = nil
	updated.Revision = revision + 1
	updated.UpdatedAt = now
	return &updated, nil
}

// GetProgress loads the state and its template's steps and projects them into
// the read-side progress view.
func (s *WorkflowStateService) GetProgress(ctx context.Context, stateID string) (*Progress, error) {
	st, err := s.GetByID(ctx, stateID)
	if err != nil {
		return nil, err
	}
	steps, err := listStepsByTemplate(ctx, s.db, st.TemplateID)
	if err != nil {
		return nil, err
	}
	p := BuildProgress(steps, st, time.Now())
	return &p, nil
}
