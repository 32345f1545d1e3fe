// Package ingest runs the per-source aggregation pipelines: scan unconsumed records, resolve
// each one onto a canonical game and link it.
package ingest

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/canonical"
	"github.com/yungbote/games-aggregator/internal/aggregation/dictionary"
	"github.com/yungbote/games-aggregator/internal/aggregation/resolver"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

// Engine holds the store handles every pipeline shares. It has no mutable state; pipelines built
// from one Engine may run concurrently.
type Engine struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    *repos.Repos
	dict     dictionary.Registry
	store    canonical.Store
	resolver resolver.Resolver
	write    aggregates.BaseDeps
	metrics  *observability.Metrics

	batchSizes map[sources.Kind]int
}

func NewEngine(db *gorm.DB, log *logger.Logger, r *repos.Repos, metrics *observability.Metrics) *Engine {
	dict := dictionary.NewRegistry(db, log, r.Dictionaries)
	store := canonical.NewStore(db, log, r.Games, r.Sources)
	return &Engine{
		db:       db,
		log:      log.With("service", "IngestEngine"),
		repos:    r,
		dict:     dict,
		store:    store,
		resolver: resolver.NewResolver(db, log, r.Games, r.Relations, dict, store),
		write: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: aggregates.NewGormTxRunner(db),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		metrics: metrics,
	}
}

// WithTxRunner returns a copy of e whose record transactions go through runner.
func (e *Engine) WithTxRunner(runner aggregates.TxRunner) *Engine {
	cp := *e
	cp.write.Runner = runner
	return &cp
}

// WithBatchSizes returns a copy of e whose built-in pipelines use the given per-source batch
// sizes instead of the defaults. Non-positive entries are ignored.
func (e *Engine) WithBatchSizes(sizes map[sources.Kind]int) *Engine {
	cp := *e
	cp.batchSizes = make(map[sources.Kind]int, len(sizes))
	for k, n := range sizes {
		if n > 0 {
			cp.batchSizes[k] = n
		}
	}
	return &cp
}

func (e *Engine) Resolver() resolver.Resolver { return e.resolver }

// Pipeline returns the built-in pipeline for kind.
func (e *Engine) Pipeline(kind sources.Kind) (*Pipeline, error) {
	cfg, err := ConfigFor(kind)
	if err != nil {
		return nil, err
	}
	if n, ok := e.batchSizes[kind]; ok {
		cfg.BatchSize = n
	}
	return e.PipelineWith(cfg)
}

func (e *Engine) PipelineWith(cfg SourceConfig) (*Pipeline, error) {
	if cfg.Extract == nil || cfg.Required == nil {
		return nil, fmt.Errorf("source %q: extract and required predicate are mandatory", cfg.Kind)
	}
	adapter, ok := e.repos.Sources.Get(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("source %q: no adapter registered", cfg.Kind)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		cfg:     cfg,
		adapter: adapter,
		engine:  e,
		log:     e.log.With("source", string(cfg.Kind)),
	}, nil
}
