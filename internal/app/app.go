package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/data/db"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	types "github.com/yungbote/games-aggregator/internal/domain"
	apphttp "github.com/yungbote/games-aggregator/internal/http"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    *repos.Repos
	Clients  Clients
	Services Services
	Server   *apphttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration from the environment and wires the whole process.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	dbService, err := db.NewService(db.Config{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DBDSN,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(cfg.MigrateCatalogs); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	metrics := observability.Init(cfg.MetricsEnabled)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.OtelEnvironment,
		Version:     cfg.OtelVersion,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	reposet := repos.New(theDB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, metrics, clients)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}

	handlers := wireHandlers(log, theDB, cfg, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Server:       wireServer(log, cfg, metrics, handlers),
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background loops: job execution, the job_run gauge sampler and the run
// event log forwarder. They stop on Close or when ctx is done.
func (a *App) Start(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.Metrics.StartJobRunCollector(ctx, a.Log, a.DB, 15*time.Second)

	if err := a.Clients.RunBus.StartForwarder(ctx, func(ev types.RunEvent) {
		a.Log.Debug("run event", "job_id", ev.JobID, "job_type", ev.JobType, "kind", ev.Kind, "attempt", ev.Attempt)
	}); err != nil {
		a.Log.Warn("run event forwarder not started", "error", err)
	}

	switch {
	case a.Services.Temporal != nil:
		if err := a.Services.Temporal.Start(ctx); err != nil {
			return fmt.Errorf("start temporal worker: %w", err)
		}
	case a.Services.Worker != nil:
		a.Services.Worker.Start(ctx)
	}
	return nil
}

// Run starts the background loops and serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(ctx, a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Worker != nil {
		a.Services.Worker.Wait()
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	a.Log.Sync()
}
