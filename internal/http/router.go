package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/games-aggregator/internal/http/handlers"
	httpMW "github.com/yungbote/games-aggregator/internal/http/middleware"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler *httpH.HealthHandler
	GameHandler   *httpH.GameHandler
	DryRunHandler *httpH.DryRunHandler
	JobHandler    *httpH.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "games-aggregator"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	if cfg.GameHandler != nil {
		r.GET("/games/:slug", cfg.GameHandler.GetBySlug)
		r.GET("/sources/:kind/:id/game", cfg.GameHandler.GetBySource)
		r.GET("/stats", cfg.GameHandler.Stats)
	}
	if cfg.DryRunHandler != nil {
		r.POST("/dry-run", cfg.DryRunHandler.DryRun)
	}
	if cfg.JobHandler != nil {
		r.GET("/jobs", cfg.JobHandler.ListJobs)
		r.GET("/jobs/:id", cfg.JobHandler.GetJob)
		r.POST("/jobs/aggregate", cfg.JobHandler.EnqueueAggregate)
		r.POST("/jobs/reconcile", cfg.JobHandler.EnqueueReconcile)
	}
	return r
}
