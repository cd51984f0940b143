package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/platform"
)

const templateColumns = `id, name, module, description, is_default, is_active, version, organization_id, created_at, updated_at`

type TemplateService struct {
	db DB
}

func NewTemplateService(db DB) *TemplateService {
	return &TemplateService{db: db}
}

func scanTemplate(row interface{ Scan(dest ...any) error }) (model.WorkflowTemplate, error) {
	var t model.WorkflowTemplate
	err := row.Scan(&t.ID, &t.Name, &t.Module, &t.Description, &t.IsDefault,
		&t.IsActive, &t.Version, &t.OrganizationID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Create inserts a new workflow template. When IsDefault is set, any prior
// default for the same (module, organization) is unset in the same
// transaction so the single-default invariant holds at every point.
func (s *TemplateService) Create(ctx context.Context, t *model.WorkflowTemplate) error {
	t.ID = platform.NewName("wft_")
	t.Version = 1
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	insert := `INSERT INTO workflow_templates (` + templateColumns + `)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	args := []any{t.ID, t.Name, t.Module, t.Description, t.IsDefault,
		t.IsActive, t.Version, t.OrganizationID, t.CreatedAt, t.UpdatedAt}

	if !t.IsDefault {
		if _, err := s.db.Exec(ctx, insert, args...); err != nil {
			return fmt.Errorf("create workflow template: %w", err)
		}
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE workflow_templates SET is_default = false, updated_at = $1
		 WHERE module = $2 AND organization_id = $3 AND is_default`,
		now, t.Module, t.OrganizationID)
	if err != nil {
		return fmt.Errorf("unset prior default template: %w", err)
	}
	if _, err := tx.Exec(ctx, insert, args...); err != nil {
		return fmt.Errorf("create workflow template: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create template: %w", err)
	}
	return nil
}

func (s *TemplateService) GetByID(ctx context.Context, id string) (*model.WorkflowTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get template %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return &t, nil
}

// GetDefault returns the default, active template for a module within an
// organization. Returns ErrNoDefaultTemplate when none exists.
func (s *TemplateService) GetDefault(ctx context.Context, module, organizationID string) (*model.WorkflowTemplate, error) {
	t, err := scanTemplate(s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workflow_templates
		 WHERE module = $1 AND organization_id = $2 AND is_default AND is_active`,
		module, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDefaultTemplate
		}
		return nil, fmt.Errorf("get default template for %s: %w", module, err)
	}
	return &t, nil
}

// TemplateFilters holds optional filters for listing templates.
type TemplateFilters struct {
	Module         string
	OrganizationID string
	ActiveOnly     bool
}

// List returns templates with optional filters, paginated by creation time.
func (s *TemplateService) List(ctx context.Context, filters TemplateFilters, limit int, cursor string) ([]model.WorkflowTemplate, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + templateColumns + ` FROM workflow_templates`
	var conditions []string
	var args []any
	argN := 1

	if filters.Module != "" {
		conditions = append(conditions, fmt.Sprintf("module = $%d", argN))
		args = append(args, filters.Module)
		argN++
	}
	if filters.OrganizationID != "" {
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", argN))
		args = append(args, filters.OrganizationID)
		argN++
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if cursor != "" {
		conditions = append(conditions, fmt.Sprintf("created_at < (SELECT created_at FROM workflow_templates WHERE id = $%d)", argN))
		args = append(args, cursor)
		argN++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argN)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.WorkflowTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}

	hasMore := len(templates) > limit
	if hasMore {
		templates = templates[:limit]
	}
	return templates, hasMore, nil
}

// Update updates mutable fields on a template.
func (s *TemplateService) Update(ctx context.Context, id string, name, description *string) error {
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
	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argN))
	args = append(args, time.Now())
	argN++
	args = append(args, id)

	tag, err := s.db.Exec(ctx,
		fmt.Sprintf("UPDATE workflow_templates SET %s WHERE id = $%d", strings.Join(sets, ", "), argN),
		args...)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update template %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetDefault makes the template the default for its (module, organization),
// unsetting any prior default. Both writes run inside a single transaction so
// a failure never leaves the module with zero or two defaults.
func (s *TemplateService) SetDefault(ctx context.Context, id string) error {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set default: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE workflow_templates SET is_default = false, updated_at = $1
		 WHERE module = $2 AND organization_id = $3 AND is_default AND id <> $4`,
		now, t.Module, t.OrganizationID, id)
	if err != nil {
		return fmt.Errorf("unset prior default template: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE workflow_templates SET is_default = true, updated_at = $1 WHERE id = $2`,
		now, id)
	if err != nil {
		return fmt.Errorf("set default template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set default template %s: %w", id, ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit set default: %w", err)
	}
	return nil
}

// Activate validates the template's step graph and marks it active. A
// template whose graph has duplicate orders, dangling or out-of-template
// targets, unreachable steps, or forward cycles cannot be activated.
func (s *TemplateService) Activate(ctx context.Context, id string) error {
	steps, err := listStepsByTemplate(ctx, s.db, id)
	if err != nil {
		return err
	}
	conditions, err := listConditionsByTemplate(ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := validateStepGraph(steps, conditions); err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE workflow_templates SET is_active = true, version = version + 1, updated_at = $1
		 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("activate template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activate template %s: %w", id, ErrNotFound)
	}
	return nil
}

// Deactivate marks a template inactive. Existing workflow states keep
// progressing on it; it just stops being eligible as a default.
func (s *TemplateService) Deactivate(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE workflow_templates SET is_active = false, is_default = false, updated_at = $1
		 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deactivate template %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a template and its steps. The delete is blocked by the
// database while any entity workflow state still references the template.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM workflow_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete template %s: %w", id, ErrNotFound)
	}
	return nil
}
