package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"github.com/yungbote/games-aggregator/internal/temporalx"
	"github.com/yungbote/games-aggregator/internal/temporalx/aggregaterun"
)

type Runner struct {
	log *logger.Logger
	cfg temporalx.Config

	tc       temporalsdkclient.Client
	jobRepo  repos.JobRunRepo
	registry *jobrt.Registry
	notify   jobrt.Notifier
}

func NewRunner(
	log *logger.Logger,
	cfg temporalx.Config,
	tc temporalsdkclient.Client,
	jobRepo repos.JobRunRepo,
	registry *jobrt.Registry,
	notify jobrt.Notifier,
) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if jobRepo == nil || registry == nil {
		return nil, fmt.Errorf("temporal worker missing deps")
	}
	return &Runner{
		log:      log.With("component", "TemporalWorker"),
		cfg:      cfg,
		tc:       tc,
		jobRepo:  jobRepo,
		registry: registry,
		notify:   notify,
	}, nil
}

// Start begins polling the task queue, retrying worker start until cfg.DialMaxWait. The worker
// stops when ctx is done.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	if r.cfg.AutoRegisterNamespace {
		if err := temporalx.EnsureNamespace(ctx, r.log, r.cfg); err != nil {
			r.log.Warn("Temporal namespace ensure failed; worker will retry on start", "namespace", r.cfg.Namespace, "error", err)
		}
	}

	deadline := time.Now().Add(r.cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		missingNamespace := errors.As(startErr, &nfe)
		if missingNamespace && r.cfg.AutoRegisterNamespace {
			_ = temporalx.EnsureNamespace(ctx, r.log, r.cfg)
		}

		if r.cfg.DialMaxWait <= 0 || time.Now().After(deadline) {
			if missingNamespace {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", r.cfg.TaskQueue, "attempt", attempt, "error", startErr)
		time.Sleep(r.cfg.DialBackoff)
	}
}

func (r *Runner) newWorker() worker.Worker {
	concurrency := r.cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	Register(w, &aggregaterun.Activities{
		Log:      r.log,
		Jobs:     r.jobRepo,
		Registry: r.registry,
		Notify:   r.notify,
	})
	return w
}

// Register binds the aggregate run workflow and activity under their stable names.
func Register(w worker.Registry, acts *aggregaterun.Activities) {
	w.RegisterWorkflowWithOptions(aggregaterun.Workflow, workflow.RegisterOptions{Name: aggregaterun.WorkflowName})
	w.RegisterActivityWithOptions(acts.Execute, activity.RegisterOptions{Name: aggregaterun.ActivityExecute})
}
