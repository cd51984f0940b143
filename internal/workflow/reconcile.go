package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Net-Geometry/iworx-tnb-sub005/internal/activity"
	"github.com/Net-Geometry/iworx-tnb-sub005/internal/model"
)

// ReconcileWorkflowStatesWorkflow runs hourly and backfills workflow state
// for entities that have none: entities created while their module had no
// usable default template, or whose inline initialization failed and was
// logged-and-swallowed by the creating service.
func ReconcileWorkflowStatesWorkflow(ctx workflow.Context) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	for _, module := range model.Modules {
		var res activity.BulkInitializeResult
		if err := workflow.ExecuteActivity(ctx, "BulkInitializeModule", module).Get(ctx, &res); err != nil {
			return fmt.Errorf("bulk initialize %s: %w", module, err)
		}
		if res.Initialized > 0 || res.Failed > 0 {
			logger.Info("reconciled workflow states",
				"module", module, "initialized", res.Initialized, "failed", res.Failed)
		}
	}

	return nil
}
