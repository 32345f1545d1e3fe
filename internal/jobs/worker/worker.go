package worker

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	// MaxAttempts and RetryDelay mirror the Temporal retry policy: 3 tries, fixed 30s apart.
	MaxAttempts       int
	RetryDelay        time.Duration
	StaleRunning      time.Duration
	HeartbeatInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency:       2,
		PollInterval:      time.Second,
		MaxAttempts:       3,
		RetryDelay:        30 * time.Second,
		StaleRunning:      30 * time.Minute,
		HeartbeatInterval: 30 * time.Second,
	}
}

// Worker polls job_run for runnable jobs and executes them in-process. It is the fallback
// scheduler when Temporal is not configured.
type Worker struct {
	log      *logger.Logger
	repo     repos.JobRunRepo
	registry *runtime.Registry
	notify   runtime.Notifier
	cfg      Config
	wg       sync.WaitGroup
}

func NewWorker(baseLog *logger.Logger, repo repos.JobRunRepo, registry *runtime.Registry, notify runtime.Notifier, cfg Config) *Worker {
	def := DefaultConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.StaleRunning <= 0 {
		cfg.StaleRunning = def.StaleRunning
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	return &Worker{
		log:      baseLog.With("component", "JobWorker"),
		repo:     repo,
		registry: registry,
		notify:   notify,
		cfg:      cfg,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting job worker pool", "concurrency", w.cfg.Concurrency, "job_types", w.registry.Types())
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.runLoop(ctx, workerID)
		}()
	}
}

// Wait blocks until every loop started by Start has returned.
func (w *Worker) Wait() { w.wg.Wait() }

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			for w.RunOnce(ctx) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// RunOnce claims and executes at most one job. It reports whether a job was claimed.
func (w *Worker) RunOnce(ctx context.Context) bool {
	job, err := w.repo.ClaimNextRunnable(dbctx.Context{Ctx: ctx}, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
	if err != nil {
		w.log.Warn("ClaimNextRunnable failed", "error", err)
		return false
	}
	if job == nil {
		return false
	}

	jc := runtime.NewContext(ctx, job, w.repo, w.notify, w.log)
	stop := w.startHeartbeat(ctx, jc)
	defer stop()

	if err := runtime.Execute(w.registry, jc); err != nil {
		left := w.cfg.MaxAttempts - job.Attempts
		if left > 0 {
			w.log.Warn("Job attempt failed; will retry", "job_id", job.ID, "job_type", job.JobType, "attempt", job.Attempts, "retry_in", w.cfg.RetryDelay, "error", err)
		} else {
			w.log.Error("Job failed permanently", "job_id", job.ID, "job_type", job.JobType, "attempts", job.Attempts, "error", err)
		}
	}
	return true
}

func (w *Worker) startHeartbeat(ctx context.Context, jc *runtime.Context) func() {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(w.cfg.HeartbeatInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				jc.Heartbeat()
			}
		}
	}()
	return func() { close(done) }
}
