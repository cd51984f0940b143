package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/platform"
)

// BulkInitResult reports how a bulk initialization run went. Failed counts
// entities whose state row could not be inserted (or whose organization has
// no default template); a partial failure never aborts the batch.
type BulkInitResult struct {
	Initialized int `json:"initialized"`
	Failed      int `json:"failed"`
}

// BulkInitialize seeds workflow state for every entity in a module that has
// none, at the first step of the entity organization's default active
// template. Re-runnable: a second run over the same module finds nothing to
// do and reports {0, 0}. Entities created mid-scan are protected by the
// ON CONFLICT clause on the per-entity unique index.
func (s *WorkflowStateService) BulkInitialize(ctx context.Context, module string) (BulkInitResult, error) {
	var res BulkInitResult

	// Preconditions: at least one default active template for the module,
	// with at least one step. No writes happen when these fail.
	var templateID string
	err := s.db.QueryRow(ctx,
		`SELECT id FROM workflow_templates
		 WHERE module = $1 AND is_default AND is_active
		 ORDER BY created_at ASC LIMIT 1`, module).Scan(&templateID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return res, ErrNoDefaultTemplate
		}
		return res, fmt.Errorf("check default template: %w", err)
	}
	var stepCount int
	err = s.db.QueryRow(ctx,
		`SELECT count(*) FROM workflow_template_steps WHERE template_id = $1`, templateID).Scan(&stepCount)
	if err != nil {
		return res, fmt.Errorf("count template steps: %w", err)
	}
	if stepCount == 0 {
		return res, ErrNoStepsInTemplate
	}

	missing, err := s.findMissing(ctx, module)
	if err != nil {
		return res, err
	}

	// First step per organization, resolved lazily: organizations share a
	// module but each has its own default template.
	type seed struct {
		template *model.WorkflowTemplate
		first    *model.WorkflowTemplateStep
	}
	seeds := make(map[string]*seed)

	col := entityColumn(module)
	for _, m := range missing {
		sd, ok := seeds[m.organizationID]
		if !ok {
			sd = &seed{}
			tmpl, err := scanTemplate(s.db.QueryRow(ctx,
				`SELECT `+templateColumns+` FROM workflow_templates
				 WHERE module = $1 AND organization_id = $2 AND is_default AND is_active`,
				module, m.organizationID))
			if err == nil {
				first, ferr := scanStep(s.db.QueryRow(ctx,
					`SELECT `+stepColumns+` FROM workflow_template_steps
					 WHERE template_id = $1 ORDER BY step_order ASC LIMIT 1`, tmpl.ID))
				if ferr == nil {
					sd.template = &tmpl
					sd.first = &first
				}
			}
			seeds[m.organizationID] = sd
		}
		if sd.template == nil || sd.first == nil {
			res.Failed++
			continue
		}

		now := time.Now()
		st := model.EntityWorkflowState{
			ID:             platform.NewID(),
			TemplateID:     sd.template.ID,
			CurrentStepID:  sd.first.ID,
			Status:         model.WorkflowActive,
			SLADueAt:       slaDueFor(sd.first, now),
			Revision:       1,
			OrganizationID: m.organizationID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		entityID := m.entityID
		if module == model.ModuleWorkOrders {
			st.WorkOrderID = &entityID
		} else {
			st.SafetyIncidentID = &entityID
		}

		tag, err := s.db.Exec(ctx,
			`INSERT INTO entity_workflow_states (`+stateColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (`+col+`) WHERE `+col+` IS NOT NULL DO NOTHING`,
			st.ID, st.TemplateID, st.CurrentStepID, st.WorkOrderID, st.SafetyIncidentID,
			st.Status, st.AssignedToUserID, st.AssignedRole, st.SLADueAt, st.Revision,
			st.OrganizationID, st.CompletedAt, st.CreatedAt, st.UpdatedAt)
		if err != nil {
			res.Failed++
			continue
		}
		if tag.RowsAffected() == 0 {
			// Entity got its state concurrently between the scan and the
			// insert; it is neither initialized by this run nor failed.
			continue
		}
		res.Initialized++
	}
	return res, nil
}

type missingEntity struct {
	entityID       string
	organizationID string
}

// findMissing computes the set difference between the module's entity table
// and its workflow-state rows.
func (s *WorkflowStateService) findMissing(ctx context.Context, module string) ([]missingEntity, error) {
	table := entityTable(module)
	col := entityColumn(module)
	rows, err := s.db.Query(ctx,
		`SELECT e.id, e.organization_id FROM `+table+` e
		 WHERE NOT EXISTS (
		     SELECT 1 FROM entity_workflow_states s WHERE s.`+col+` = e.id
		 )
		 ORDER BY e.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("scan %s missing state: %w", module, err)
	}
	defer rows.Close()

	var missing []missingEntity
	for rows.Next() {
		var m missingEntity
		if err := rows.Scan(&m.entityID, &m.organizationID); err != nil {
			return nil, fmt.Errorf("scan missing entity: %w", err)
		}
		missing = append(missing, m)
	}
	return missing, rows.Err()
}

// BulkInitializeAll runs BulkInitialize for every module concurrently.
// Modules without a default template are skipped rather than failing the run.
func (s *WorkflowStateService) BulkInitializeAll(ctx context.Context) (map[string]BulkInitResult, error) {
	var mu sync.Mutex
	results := make(map[string]BulkInitResult, len(model.Modules))

	g, gctx := errgroup.WithContext(ctx)
	for _, module := range model.Modules {
		module := module
		g.Go(func() error {
			res, err := s.BulkInitialize(gctx, module)
			if err != nil {
				if errors.Is(err, ErrNoDefaultTemplate) || errors.Is(err, ErrNoStepsInTemplate) {
					return nil
				}
				return fmt.Errorf("bulk initialize %s: %w", module, err)
			}
			mu.Lock()
			results[module] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
