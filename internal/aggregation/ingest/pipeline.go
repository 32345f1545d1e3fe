package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/games-aggregator/internal/aggregation/canonical"
	"github.com/yungbote/games-aggregator/internal/aggregation/resolver"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

var tracer = otel.Tracer("github.com/yungbote/games-aggregator/internal/aggregation/ingest")

type Pipeline struct {
	cfg     SourceConfig
	adapter sources.Adapter
	engine  *Engine
	log     *logger.Logger
}

func (p *Pipeline) Kind() sources.Kind { return p.cfg.Kind }

func (p *Pipeline) Config() SourceConfig { return p.cfg }

// Run consumes every currently unconsumed record, batchSize at a time. Each record commits in its
// own transaction; the first store failure stops the run and is returned for the scheduler to
// retry. Cancellation is honored between batches only.
func (p *Pipeline) Run(ctx context.Context, batchSize int) (stats RunStats, err error) {
	if batchSize <= 0 {
		batchSize = p.cfg.BatchSize
	}
	kind := p.cfg.Kind
	stats = RunStats{RunID: uuid.NewString(), Source: kind, StartedAt: time.Now()}
	log := p.log.With("run_id", stats.RunID)

	ctx, span := tracer.Start(ctx, "ingest.Run", trace.WithAttributes(
		attribute.String("source", string(kind)),
		attribute.String("run_id", stats.RunID),
		attribute.Int("batch_size", batchSize),
	))
	defer func() {
		stats.FinishedAt = time.Now()
		status := "succeeded"
		if err != nil {
			status = "failed"
		}
		p.engine.metrics.ObserveRun(string(kind), status, stats.FinishedAt.Sub(stats.StartedAt))
		span.SetAttributes(
			attribute.Int("scanned", stats.Scanned),
			attribute.Int("linked", stats.Linked()),
		)
		observability.EndSpan(span, err)
	}()

	read := dbctx.Context{Ctx: ctx, Tx: p.engine.db}
	for {
		if err := ctx.Err(); err != nil {
			log.Info("run cancelled between batches", "last_id", stats.LastID)
			return stats, err
		}
		recs, err := p.adapter.Unconsumed(read, stats.LastID, batchSize)
		if err != nil {
			return stats, aggregates.MapError("ingest.scan", fmt.Errorf("scan %s after %d: %w", kind, stats.LastID, err))
		}
		if len(recs) == 0 {
			break
		}
		stats.Batches++
		for _, rec := range recs {
			stats.Scanned++
			outcomes, err := p.process(ctx, rec)
			if err != nil {
				log.Warn("record failed, stopping run", "record_id", rec.ID, "error", err)
				return stats, fmt.Errorf("%s record %d: %w", kind, rec.ID, err)
			}
			for _, o := range outcomes {
				stats.count(o)
				p.engine.metrics.IncRecords(string(kind), o, 1)
			}
			stats.LastID = rec.ID
		}
		log.Debug("batch done", "batch", stats.Batches, "last_id", stats.LastID, "scanned", stats.Scanned)
		if len(recs) < batchSize {
			break
		}
	}
	log.Info("run finished",
		"scanned", stats.Scanned,
		"created", stats.Created,
		"matched", stats.Matched,
		"linked", stats.Linked(),
		"unlinked", stats.Unlinked,
		"skipped_invalid", stats.SkippedInvalid,
		"slug_collisions", stats.SlugCollisions,
	)
	return stats, nil
}

// process handles one record and reports its outcomes. A record that fails validation or loses
// the slug to an unrelated game is an outcome, not an error.
func (p *Pipeline) process(ctx context.Context, rec sources.Record) ([]string, error) {
	ex := p.cfg.Extract(rec)
	if !p.cfg.Required(ex) {
		return []string{OutcomeSkippedInvalid}, nil
	}

	var outcomes []string
	op := "ingest." + string(p.cfg.Kind)
	// The record commits or rolls back as a unit even if the run is cancelled meanwhile.
	err := aggregates.ExecuteWrite(context.WithoutCancel(ctx), p.engine.write, op, func(dbc dbctx.Context) error {
		outcomes = outcomes[:0]
		res, err := p.engine.resolver.Resolve(dbc, resolver.Input{
			Name:        ex.Name,
			ReleaseYear: ex.ReleaseYear,
			Developers:  ex.Developers,
			Publishers:  ex.Publishers,
		})
		if err != nil {
			return err
		}
		if res.Created {
			outcomes = append(outcomes, OutcomeCreated)
		} else {
			outcomes = append(outcomes, OutcomeMatched)
		}

		if err := p.attachTags(dbc, res.Game.ID, domaingames.DictCategory, domaingames.RelCategories, ex.Categories); err != nil {
			return err
		}
		if err := p.attachTags(dbc, res.Game.ID, domaingames.DictGenre, domaingames.RelGenres, ex.Genres); err != nil {
			return err
		}

		link, err := p.engine.store.Link(dbc, res.Game.ID, canonical.LinkRequest{
			Kind:           p.cfg.Kind,
			SourceID:       rec.ID,
			ReleaseYear:    ex.ReleaseYear,
			AllowSecondary: p.cfg.Secondary,
		})
		if err != nil {
			return err
		}
		switch link {
		case canonical.LinkPrimary:
			outcomes = append(outcomes, OutcomeLinkedPrimary)
		case canonical.LinkSecondary:
			outcomes = append(outcomes, OutcomeLinkedSecondary)
		case canonical.LinkRaced:
			outcomes = append(outcomes, OutcomeRaced)
		default:
			outcomes = append(outcomes, OutcomeUnlinked)
		}
		return nil
	})
	switch {
	case errors.Is(err, canonical.ErrSlugCollision):
		p.log.Debug("slug held by another game, record left unconsumed", "record_id", rec.ID, "name", ex.Name)
		return []string{OutcomeSlugCollision}, nil
	case errors.Is(err, canonical.ErrEmptySlug):
		return []string{OutcomeSkippedInvalid}, nil
	case err != nil:
		return nil, err
	}
	return outcomes, nil
}

func (p *Pipeline) attachTags(dbc dbctx.Context, gameID uint64, kind domaingames.DictionaryKind, rel domaingames.Relation, names []string) error {
	if len(names) == 0 {
		return nil
	}
	ids, err := p.engine.dict.GetOrCreateMany(dbc, kind, names)
	if err != nil {
		return err
	}
	if _, err := p.engine.repos.Relations.Attach(dbc, rel, gameID, ids); err != nil {
		return fmt.Errorf("attach %s: %w", kind, err)
	}
	return nil
}
