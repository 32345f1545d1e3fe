package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/games-aggregator/internal/http"
	httpH "github.com/yungbote/games-aggregator/internal/http/handlers"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Game   *httpH.GameHandler
	DryRun *httpH.DryRunHandler
	Job    *httpH.JobHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Game:   httpH.NewGameHandler(services.Catalog),
		DryRun: httpH.NewDryRunHandler(services.Catalog, cfg.EnabledSources()),
		Job:    httpH.NewJobHandler(services.Jobs),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   cfg.OtelServiceName,
		CORSOrigins:   cfg.CORSOrigins,
		HealthHandler: handlers.Health,
		GameHandler:   handlers.Game,
		DryRunHandler: handlers.DryRun,
		JobHandler:    handlers.Job,
	})
}
