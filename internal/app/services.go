package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/reconcile"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/jobs"
	"github.com/yungbote/games-aggregator/internal/jobs/pipeline/aggregate_source"
	jobreconcile "github.com/yungbote/games-aggregator/internal/jobs/pipeline/reconcile"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/jobs/worker"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
	"github.com/yungbote/games-aggregator/internal/services"
	"github.com/yungbote/games-aggregator/internal/temporalx/temporalworker"
)

type Services struct {
	Engine     *ingest.Engine
	Reconciler reconcile.Reconciler
	Registry   *jobrt.Registry
	Jobs       jobs.Service
	Catalog    services.CatalogService

	// Exactly one of these runs jobs: the Temporal runner when a frontend is configured,
	// the in-process worker otherwise.
	Worker   *worker.Worker
	Temporal *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r *repos.Repos, metrics *observability.Metrics, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	engine := ingest.NewEngine(db, log, r, metrics).WithBatchSizes(cfg.BatchSizes())
	reconciler := reconcile.NewReconciler(db, log, r.Games, aggregates.NewObservabilityHooks(metrics))
	catalog := services.NewCatalogService(log, r, engine)

	registry := jobrt.NewRegistry()
	for _, h := range []jobrt.Handler{
		aggregate_source.New(log, engine),
		jobreconcile.New(log, reconciler),
	} {
		if err := registry.Register(h); err != nil {
			return Services{}, fmt.Errorf("register job handler: %w", err)
		}
	}

	out := Services{
		Engine:     engine,
		Reconciler: reconciler,
		Registry:   registry,
		Jobs:       jobs.NewService(log, r.JobRuns, clients.Temporal, cfg.Temporal.TaskQueue),
		Catalog:    catalog,
	}

	if clients.Temporal != nil {
		runner, err := temporalworker.NewRunner(log, cfg.Temporal, clients.Temporal, r.JobRuns, registry, clients.RunBus)
		if err != nil {
			return Services{}, fmt.Errorf("init temporal worker: %w", err)
		}
		out.Temporal = runner
		return out, nil
	}

	out.Worker = worker.NewWorker(log, r.JobRuns, registry, clients.RunBus, workerConfig(cfg))
	return out, nil
}

func workerConfig(cfg Config) worker.Config {
	wc := worker.DefaultConfig()
	if cfg.WorkerConcurrency > 0 {
		wc.Concurrency = cfg.WorkerConcurrency
	}
	if cfg.WorkerPoll > 0 {
		wc.PollInterval = cfg.WorkerPoll
	}
	if cfg.JobMaxAttempts > 0 {
		wc.MaxAttempts = cfg.JobMaxAttempts
	}
	if cfg.JobRetryDelay > 0 {
		wc.RetryDelay = cfg.JobRetryDelay
	}
	if cfg.JobStaleRunning > time.Minute {
		wc.StaleRunning = cfg.JobStaleRunning
	}
	return wc
}
