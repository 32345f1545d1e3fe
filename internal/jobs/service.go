package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/datatypes"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"github.com/yungbote/games-aggregator/internal/temporalx/aggregaterun"
)

var ErrAlreadyRunnable = errors.New("job of this type is already queued or running")

// Service creates job runs and hands them to a scheduler: Temporal when a client is
// configured, otherwise the row simply waits in job_run for the local worker.
type Service interface {
	Enqueue(dbc dbctx.Context, jobType string, payload any) (*types.JobRun, error)
	// EnqueueIfIdle is Enqueue guarded by ExistsRunnable for jobType.
	EnqueueIfIdle(dbc dbctx.Context, jobType string, payload any) (*types.JobRun, error)
	Get(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error)
	ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error)
}

type service struct {
	log       *logger.Logger
	repo      repos.JobRunRepo
	temporal  temporalsdkclient.Client
	taskQueue string
}

func NewService(baseLog *logger.Logger, repo repos.JobRunRepo, tc temporalsdkclient.Client, taskQueue string) Service {
	return &service{
		log:       baseLog.With("service", "JobService"),
		repo:      repo,
		temporal:  tc,
		taskQueue: strings.TrimSpace(taskQueue),
	}
}

func (s *service) Enqueue(dbc dbctx.Context, jobType string, payload any) (*types.JobRun, error) {
	jobType = strings.TrimSpace(jobType)
	if jobType == "" {
		return nil, fmt.Errorf("missing job_type")
	}
	payloadJSON := datatypes.JSON([]byte(`{}`))
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", jobType, err)
		}
		payloadJSON = datatypes.JSON(b)
	}
	now := time.Now()
	job := &types.JobRun{
		ID:        uuid.New(),
		JobType:   jobType,
		Status:    domainjobs.StatusQueued,
		Payload:   payloadJSON,
		Result:    datatypes.JSON([]byte(`{}`)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	if s.temporal == nil {
		s.log.Debug("Job queued for local worker", "job_id", job.ID, "job_type", jobType)
		return job, nil
	}
	if err := s.dispatch(dbc.Context(), job); err != nil {
		return job, err
	}
	return job, nil
}

func (s *service) EnqueueIfIdle(dbc dbctx.Context, jobType string, payload any) (*types.JobRun, error) {
	exists, err := s.repo.ExistsRunnable(dbc, jobType)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRunnable
	}
	return s.Enqueue(dbc, jobType, payload)
}

func (s *service) dispatch(ctx context.Context, job *types.JobRun) error {
	_, err := s.temporal.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                    job.ID.String(),
		TaskQueue:             s.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, aggregaterun.WorkflowName, job.ID.String())
	if err == nil {
		return nil
	}
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}

	now := time.Now()
	if uErr := s.repo.UpdateFields(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, job.ID, map[string]interface{}{
		"status":        domainjobs.StatusFailed,
		"error":         "dispatch: " + err.Error(),
		"last_error_at": now,
		"updated_at":    now,
	}); uErr != nil {
		s.log.Error("mark undispatched job failed", "job_id", job.ID, "error", uErr)
	}
	return fmt.Errorf("start temporal workflow: %w", err)
}

func (s *service) Get(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	rows, err := s.repo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *service) ListRecent(dbc dbctx.Context, jobType string, limit int) ([]*types.JobRun, error) {
	return s.repo.ListRecent(dbc, jobType, limit)
}
