package aggregate_source

import (
	"fmt"

	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	var in Payload
	if err := jc.Decode(&in); err != nil {
		return err
	}
	kind, err := sources.ParseKind(in.Source)
	if err != nil {
		return err
	}
	pipe, err := p.engine.Pipeline(kind)
	if err != nil {
		return err
	}

	stats, err := pipe.Run(jc.Ctx, in.Chunk)
	jc.Log.Info("aggregate run finished",
		"source", kind,
		"run_id", stats.RunID,
		"scanned", stats.Scanned,
		"created", stats.Created,
		"linked", stats.Linked(),
		"skipped_invalid", stats.SkippedInvalid,
		"slug_collisions", stats.SlugCollisions,
		"error", err,
	)
	if err != nil {
		return fmt.Errorf("aggregate %s: %w", kind, err)
	}
	jc.Succeed(stats)
	return nil
}
