package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/platform"
)

const stepColumns = `id, template_id, name, step_order, step_type, description, sla_hours,
	approval_type, is_required, auto_assign_enabled, auto_assign_rule,
	reject_target_step_id, created_at, updated_at`

const conditionColumns = `id, step_id, condition_type, field_name, operator, value, action,
	target_step_id, priority, created_at`

const roleAssignmentColumns = `id, step_id, role_name, can_approve, can_reject, can_assign,
	can_view, can_edit, is_primary_assignee, is_backup_assignee, created_at`

type StepService struct {
	db DB
}

func NewStepService(db DB) *StepService {
	return &StepService{db: db}
}

func scanStep(row interface{ Scan(dest ...any) error }) (model.WorkflowTemplateStep, error) {
	var st model.WorkflowTemplateStep
	err := row.Scan(&st.ID, &st.TemplateID, &st.Name, &st.StepOrder, &st.StepType,
		&st.Description, &st.SLAHours, &st.ApprovalType, &st.IsRequired,
		&st.AutoAssignEnabled, &st.AutoAssignRule, &st.RejectTargetStepID,
		&st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func scanCondition(row interface{ Scan(dest ...any) error }) (model.StepCondition, error) {
	var c model.StepCondition
	err := row.Scan(&c.ID, &c.StepID, &c.ConditionType, &c.FieldName, &c.Operator,
		&c.Value, &c.Action, &c.TargetStepID, &c.Priority, &c.CreatedAt)
	return c, err
}

func scanRoleAssignment(row interface{ Scan(dest ...any) error }) (model.StepRoleAssignment, error) {
	var ra model.StepRoleAssignment
	err := row.Scan(&ra.ID, &ra.StepID, &ra.RoleName, &ra.CanApprove, &ra.CanReject,
		&ra.CanAssign, &ra.CanView, &ra.CanEdit, &ra.IsPrimaryAssignee,
		&ra.IsBackupAssignee, &ra.CreatedAt)
	return ra, err
}

var validApprovalTypes = map[string]bool{
	model.ApprovalAny:  true,
	model.ApprovalAll:  true,
	model.ApprovalNone: true,
}

// Add inserts a step into a template. step_order must be positive and unique
// within the template (enforced by a unique index as well).
func (s *StepService) Add(ctx context.Context, step *model.WorkflowTemplateStep) error {
	if step.StepOrder < 1 {
		return fmt.Errorf("%w: step_order must be >= 1, got %d", ErrInvalidInput, step.StepOrder)
	}
	if !validApprovalTypes[step.ApprovalType] {
		return fmt.Errorf("%w: unknown approval_type %q", ErrInvalidInput, step.ApprovalType)
	}
	if step.AutoAssignEnabled {
		if err := validateAutoAssignRule(step.AutoAssignRule); err != nil {
			return err
		}
	}
	if step.AutoAssignRule == nil {
		step.AutoAssignRule = []byte("{}")
	}

	step.ID = platform.NewName("wfs_")
	now := time.Now()
	step.CreatedAt = now
	step.UpdatedAt = now

	_, err := s.db.Exec(ctx,
		`INSERT INTO workflow_template_steps (`+stepColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		step.ID, step.TemplateID, step.Name, step.StepOrder, step.StepType,
		step.Description, step.SLAHours, step.ApprovalType, step.IsRequired,
		step.AutoAssignEnabled, step.AutoAssignRule, step.RejectTargetStepID,
		step.CreatedAt, step.UpdatedAt)
	if err != nil {
		return fmt.Errorf("add step: %w", err)
	}
	return nil
}

func validateAutoAssignRule(raw json.RawMessage) error {
	if raw == nil {
		return fmt.Errorf("%w: auto_assign_rule is required when auto_assign is enabled", ErrInvalidInput)
	}
	var rule model.AutoAssignRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return fmt.Errorf("%w: auto_assign_rule is not valid JSON", ErrInvalidInput)
	}
	switch rule.Mode {
	case model.AutoAssignPrimaryRole:
		return nil
	case model.AutoAssignFixedUser:
		if rule.UserID == "" {
			return fmt.Errorf("%w: auto_assign_rule mode %q requires user_id", ErrInvalidInput, rule.Mode)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown auto_assign_rule mode %q", ErrInvalidInput, rule.Mode)
}

func (s *StepService) GetByID(ctx context.Context, id string) (*model.WorkflowTemplateStep, error) {
	st, err := scanStep(s.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM workflow_template_steps WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get step %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get step %s: %w", id, err)
	}
	return &st, nil
}

// ListByTemplate returns a template's steps ordered by step_order.
func (s *StepService) ListByTemplate(ctx context.Context, templateID string) ([]model.WorkflowTemplateStep, error) {
	return listStepsByTemplate(ctx, s.db, templateID)
}

func listStepsByTemplate(ctx context.Context, db DB, templateID string) ([]model.WorkflowTemplateStep, error) {
	rows, err := db.Query(ctx,
		`SELECT `+stepColumns+` FROM workflow_template_steps
		 WHERE template_id = $1 ORDER BY step_order ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var steps []model.WorkflowTemplateStep
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// Update updates mutable fields on a step.
func (s *StepService) Update(ctx context.Context, id string, name, description *string, slaHours *int, rejectTargetStepID *string) error {
	var sets []string
	var args []any
	argN := 1

	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argN))
		args = append(args, *name)
		argN++
	}
	if description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argN))
		args = append(args, *description)
		argN++
	}
	if slaHours != nil {
		sets = append(sets, fmt.Sprintf("sla_hours = $%d", argN))
		args = append(args, *slaHours)
		argN++
	}
	if rejectTargetStepID != nil {
		sets = append(sets, fmt.Sprintf("reject_target_step_id = $%d", argN))
		args = append(args, *rejectTargetStepID)
		argN++
	}
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argN))
	args = append(args, time.Now())
	argN++
	args = append(args, id)

	tag, err := s.db.Exec(ctx,
		fmt.Sprintf("UPDATE workflow_template_steps SET %s WHERE id = $%d", strings.Join(sets, ", "), argN),
		args...)
	if err != nil {
		return fmt.Errorf("update step: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update step %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *StepService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflow_template_steps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete step: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete step %s: %w", id, ErrNotFound)
	}
	return nil
}

// ---------- Role assignments ----------

func (s *StepService) AddRoleAssignment(ctx context.Context, ra *model.StepRoleAssignment) error {
	ra.ID = platform.NewID()
	ra.CreatedAt = time.Now()

	_, err := s.db.Exec(ctx,
		`INSERT INTO step_role_assignments (`+roleAssignmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ra.ID, ra.StepID, ra.RoleName, ra.CanApprove, ra.CanReject, ra.CanAssign,
		ra.CanView, ra.CanEdit, ra.IsPrimaryAssignee, ra.IsBackupAssignee, ra.CreatedAt)
	if err != nil {
		return fmt.Errorf("add role assignment: %w", err)
	}
	return nil
}

func (s *StepService) ListRoleAssignments(ctx context.Context, stepID string) ([]model.StepRoleAssignment, error) {
	return listRoleAssignments(ctx, s.db, stepID)
}

func listRoleAssignments(ctx context.Context, db DB, stepID string) ([]model.StepRoleAssignment, error) {
	rows, err := db.Query(ctx,
		`SELECT `+roleAssignmentColumns+` FROM step_role_assignments
		 WHERE step_id = $1 ORDER BY role_name ASC`, stepID)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.StepRoleAssignment
	for rows.Next() {
		ra, err := scanRoleAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role assignment: %w", err)
		}
		assignments = append(assignments, ra)
	}
	return assignments, rows.Err()
}

func (s *StepService) DeleteRoleAssignment(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM step_role_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete role assignment %s: %w", id, ErrNotFound)
	}
	return nil
}

// ---------- Conditions ----------

// AddCondition validates and inserts a step condition. The operator and
// action enums plus the value JSON are checked here, at write time, so
// evaluation never hits an unknown shape. A skip_to_step target must belong
// to the same template as the step.
func (s *StepService) AddCondition(ctx context.Context, c *model.StepCondition) error {
	if err := validateCondition(c); err != nil {
		return err
	}

	step, err := s.GetByID(ctx, c.StepID)
	if err != nil {
		return err
	}
	if c.TargetStepID != nil {
		target, err := s.GetByID(ctx, *c.TargetStepID)
		if err != nil {
			return err
		}
		if target.TemplateID != step.TemplateID {
			return fmt.Errorf("condition target step %s: %w", target.ID, ErrTemplateStepMismatch)
		}
	}

	c.ID = platform.NewID()
	c.CreatedAt = time.Now()

	_, err = s.db.Exec(ctx,
		`INSERT INTO step_conditions (`+conditionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.StepID, c.ConditionType, c.FieldName, c.Operator, c.Value,
		c.Action, c.TargetStepID, c.Priority, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("add condition: %w", err)
	}
	return nil
}

// ListConditions returns a step's conditions in evaluation order:
// priority ascending, id as the deterministic tie-break.
func (s *StepService) ListConditions(ctx context.Context, stepID string) ([]model.StepCondition, error) {
	return listConditions(ctx, s.db, stepID)
}

func listConditions(ctx context.Context, db DB, stepID string) ([]model.StepCondition, error) {
	rows, err := db.Query(ctx,
		`SELECT `+conditionColumns+` FROM step_conditions
		 WHERE step_id = $1 ORDER BY priority ASC, id ASC`, stepID)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}
	defer rows.Close()

	var conditions []model.StepCondition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

func listConditionsByTemplate(ctx context.Context, db DB, templateID string) ([]model.StepCondition, error) {
	rows, err := db.Query(ctx,
		`SELECT c.id, c.step_id, c.condition_type, c.field_name, c.operator, c.value,
		        c.action, c.target_step_id, c.priority, c.created_at
		 FROM step_conditions c
		 JOIN workflow_template_steps s ON c.step_id = s.id
		 WHERE s.template_id = $1
		 ORDER BY c.priority ASC, c.id ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template conditions: %w", err)
	}
	defer rows.Close()

	var conditions []model.StepCondition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan condition: %w", err)
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

func (s *StepService) DeleteCondition(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM step_conditions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete condition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete condition %s: %w", id, ErrNotFound)
	}
	return nil
}
