package aggregaterun

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

const ErrTypeNonRetryable = "AggregateRunNonRetryable"

type Activities struct {
	Log      *logger.Logger
	Jobs     repos.JobRunRepo
	Registry *jobrt.Registry
	Notify   jobrt.Notifier
}

// Execute runs one attempt of the job. A returned error makes Temporal retry per the workflow's
// policy; the job row already records the failure.
func (a *Activities) Execute(ctx context.Context, jobID string) (Result, error) {
	res := Result{JobID: strings.TrimSpace(jobID)}
	if a == nil || a.Jobs == nil || a.Registry == nil {
		return res, temporal.NewNonRetryableApplicationError("activity not configured", ErrTypeNonRetryable, nil)
	}
	id, err := uuid.Parse(res.JobID)
	if err != nil || id == uuid.Nil {
		return res, temporal.NewNonRetryableApplicationError("invalid job_id "+res.JobID, ErrTypeNonRetryable, err)
	}

	job, err := a.loadJob(ctx, id)
	if err != nil {
		return res, err
	}
	if job == nil {
		return res, temporal.NewNonRetryableApplicationError("job not found", ErrTypeNonRetryable, nil)
	}
	res.JobType = job.JobType
	if job.Status == domainjobs.StatusSucceeded {
		res.Status = job.Status
		res.Attempt = job.Attempts
		return res, nil
	}

	now := time.Now()
	if err := a.Jobs.UpdateFields(dbctx.Context{Ctx: ctx}, id, map[string]interface{}{
		"status":       domainjobs.StatusRunning,
		"attempts":     gorm.Expr("attempts + 1"),
		"locked_at":    now,
		"heartbeat_at": now,
		"started_at":   now,
		"updated_at":   now,
	}); err != nil {
		return res, fmt.Errorf("mark job running: %w", err)
	}
	job.Status = domainjobs.StatusRunning
	job.Attempts++
	job.LockedAt = &now
	job.HeartbeatAt = &now
	res.Attempt = job.Attempts

	jc := jobrt.NewContext(ctx, job, a.Jobs, a.Notify, a.Log)
	stop := a.startHeartbeat(ctx, jc)
	runErr := jobrt.Execute(a.Registry, jc)
	stop()

	res.Status = job.Status
	if runErr != nil {
		var missing *jobrt.MissingHandlerError
		if errors.As(runErr, &missing) {
			return res, temporal.NewNonRetryableApplicationError(runErr.Error(), ErrTypeNonRetryable, runErr)
		}
		return res, runErr
	}
	return res, nil
}

func (a *Activities) loadJob(ctx context.Context, id uuid.UUID) (*types.JobRun, error) {
	rows, err := a.Jobs.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, nil
	}
	return rows[0], nil
}

func (a *Activities) startHeartbeat(ctx context.Context, jc *jobrt.Context) func() {
	done := make(chan struct{})
	go func() {
		temporalHB := time.NewTicker(10 * time.Second)
		defer temporalHB.Stop()
		dbHB := time.NewTicker(30 * time.Second)
		defer dbHB.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-temporalHB.C:
				activity.RecordHeartbeat(ctx)
			case <-dbHB.C:
				jc.Heartbeat()
			}
		}
	}()
	return func() { close(done) }
}
