package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/activity"
)

// CheckSLABreachesWorkflow runs on a cron and reports active workflow states
// past their SLA deadline. Reporting only: SLA status is computed lazily on
// read and a breach never moves a workflow, so this cron logs and updates
// metrics but creates no transitions.
func CheckSLABreachesWorkflow(ctx workflow.Context) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	var overdue []activity.OverdueState
	if err := workflow.ExecuteActivity(ctx, "FindOverdueStates").Get(ctx, &overdue); err != nil {
		return fmt.Errorf("find overdue states: %w", err)
	}

	now := workflow.Now(ctx)
	for _, o := range overdue {
		logger.Warn("workflow state past SLA deadline",
			"state_id", o.ID,
			"module", o.Module,
			"entity_id", o.EntityID,
			"organization_id", o.OrganizationID,
			"overdue_hours", int(now.Sub(o.SLADueAt).Hours()))
	}
	if len(overdue) > 0 {
		logger.Info("sla breach check complete", "overdue", len(overdue))
	}

	return nil
}
