package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	"github.com/yungbote/games-aggregator/internal/pkg/ctxutil"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// Notifier receives job run state changes. Publishing is best effort.
type Notifier interface {
	Publish(ctx context.Context, ev types.RunEvent) error
}

/*
Context is what a Handler sees for one claimed job run.
It carries the job row, the repo used to persist state transitions and the notifier that
fans those transitions out. Handlers decode their payload, do the work and return an error;
the runner (local worker or Temporal activity) calls Fail or Succeed.
*/
type Context struct {
	Ctx    context.Context
	Job    *types.JobRun
	Repo   repos.JobRunRepo
	Notify Notifier
	Log    *logger.Logger
}

func NewContext(ctx context.Context, job *types.JobRun, repo repos.JobRunRepo, notify Notifier, log *logger.Logger) *Context {
	ctx = ctxutil.Default(ctx)
	if log == nil {
		log = logger.Nop()
	}
	if job != nil {
		log = log.With("job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts)
	}
	return &Context{Ctx: ctx, Job: job, Repo: repo, Notify: notify, Log: log}
}

// Decode unmarshals the job payload into v. An empty payload leaves v untouched.
func (c *Context) Decode(v any) error {
	if c == nil || c.Job == nil || len(c.Job.Payload) == 0 {
		return nil
	}
	raw := string(c.Job.Payload)
	if raw == "null" || raw == "{}" {
		return nil
	}
	if err := json.Unmarshal(c.Job.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", c.Job.JobType, err)
	}
	return nil
}

func (c *Context) Heartbeat() {
	if c == nil || c.Repo == nil || c.Job == nil {
		return
	}
	if err := c.Repo.Heartbeat(dbctx.Context{Ctx: c.Ctx}, c.Job.ID); err != nil {
		c.Log.Warn("job heartbeat failed", "error", err)
	}
}

// Started publishes the started event. The row itself is moved to running by the claimer.
func (c *Context) Started() {
	c.publish(domainjobs.RunEventStarted, "", nil)
}

/*
Fail marks this job run as failed and records the error.
What it does:
  - Sets status=failed, error="<stage>: <err>", last_error_at=now, clears locked_at
  - Updates the in-memory job
  - Publishes a failed event

A failed run with attempts left is picked up again by the local worker once the retry delay
has passed; under Temporal the activity retry policy re-runs it instead.
*/
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if stage != "" {
		msg = stage + ": " + msg
	}
	// Persist with a fresh context: the run context is often the reason we are failing.
	ctx := context.WithoutCancel(c.Ctx)
	if c.Repo != nil && c.Job.ID != uuid.Nil {
		if uErr := c.Repo.UpdateFields(dbctx.Context{Ctx: ctx}, c.Job.ID, map[string]interface{}{
			"status":        domainjobs.StatusFailed,
			"error":         msg,
			"last_error_at": now,
			"locked_at":     nil,
			"finished_at":   now,
			"updated_at":    now,
		}); uErr != nil {
			c.Log.Error("persist job failure", "error", uErr)
		}
	}
	c.Job.Status = domainjobs.StatusFailed
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil
	c.Job.FinishedAt = &now
	c.Job.UpdatedAt = now

	c.Log.Warn("job failed", "stage", stage, "error", err)
	c.publish(domainjobs.RunEventFailed, msg, nil)
}

// Succeed marks this job run as succeeded and stores result as JSON.
func (c *Context) Succeed(result any) {
	if c == nil || c.Job == nil {
		return
	}
	now := time.Now()
	var res datatypes.JSON
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			c.Log.Warn("marshal job result", "error", err)
		} else {
			res = datatypes.JSON(b)
		}
	}
	ctx := context.WithoutCancel(c.Ctx)
	if c.Repo != nil && c.Job.ID != uuid.Nil {
		if uErr := c.Repo.UpdateFields(dbctx.Context{Ctx: ctx}, c.Job.ID, map[string]interface{}{
			"status":       domainjobs.StatusSucceeded,
			"error":        "",
			"result":       res,
			"locked_at":    nil,
			"heartbeat_at": now,
			"finished_at":  now,
			"updated_at":   now,
		}); uErr != nil {
			c.Log.Error("persist job success", "error", uErr)
		}
	}
	c.Job.Status = domainjobs.StatusSucceeded
	c.Job.Error = ""
	c.Job.Result = res
	c.Job.LockedAt = nil
	c.Job.HeartbeatAt = &now
	c.Job.FinishedAt = &now
	c.Job.UpdatedAt = now

	c.publish(domainjobs.RunEventSucceeded, "", res)
}

func (c *Context) publish(kind domainjobs.RunEventKind, errMsg string, result []byte) {
	if c == nil || c.Notify == nil || c.Job == nil {
		return
	}
	ev := types.RunEvent{
		JobID:      c.Job.ID,
		JobType:    c.Job.JobType,
		Kind:       kind,
		Attempt:    c.Job.Attempts,
		Error:      errMsg,
		Result:     json.RawMessage(result),
		OccurredAt: time.Now().UTC(),
	}
	if err := c.Notify.Publish(context.WithoutCancel(c.Ctx), ev); err != nil {
		c.Log.Warn("publish run event", "kind", kind, "error", err)
	}
}
