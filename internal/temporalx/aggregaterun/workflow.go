package aggregaterun

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow drives one job_run row to a terminal state. The workflow id is the job id.
func Workflow(ctx workflow.Context, jobID string) (Result, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		jobID = strings.TrimSpace(workflow.GetInfo(ctx).WorkflowExecution.ID)
	}
	if jobID == "" {
		return Result{}, fmt.Errorf("aggregaterun: missing job_id")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 6 * time.Hour,
		HeartbeatTimeout:    2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        RetryInterval,
			BackoffCoefficient:     1.0,
			MaximumInterval:        RetryInterval,
			MaximumAttempts:        MaxAttempts,
			NonRetryableErrorTypes: []string{ErrTypeNonRetryable},
		},
	})

	var out Result
	if err := workflow.ExecuteActivity(ctx, ActivityExecute, jobID).Get(ctx, &out); err != nil {
		return out, err
	}
	return out, nil
}
