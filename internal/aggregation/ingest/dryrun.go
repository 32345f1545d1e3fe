package ingest

import (
	"context"
	"fmt"

	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

const DefaultDryRunLimit = 200

// DryRun scans up to limit unconsumed records and reports what Run would do with them. It uses
// the resolver's Simulate path and never writes.
func (p *Pipeline) DryRun(ctx context.Context, limit int) (DryRunReport, error) {
	if limit <= 0 {
		limit = DefaultDryRunLimit
	}
	report := DryRunReport{Source: p.cfg.Kind}
	missing := map[string]struct{}{}
	read := dbctx.Context{Ctx: ctx, Tx: p.engine.db}

	var after uint64
	for report.Scanned < limit {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		page := limit - report.Scanned
		if page > p.cfg.BatchSize {
			page = p.cfg.BatchSize
		}
		recs, err := p.adapter.Unconsumed(read, after, page)
		if err != nil {
			return report, fmt.Errorf("scan %s after %d: %w", p.cfg.Kind, after, err)
		}
		for _, rec := range recs {
			report.Scanned++
			after = rec.ID
			ex := p.cfg.Extract(rec)
			if !p.cfg.Required(ex) {
				report.SkippedInvalid++
				continue
			}
			report.Candidates++
			d, err := p.engine.resolver.Simulate(read, ex.Name, ex.ReleaseYear, ex.Developers, ex.Publishers)
			if err != nil {
				return report, fmt.Errorf("simulate %s record %d: %w", p.cfg.Kind, rec.ID, err)
			}
			if d.WouldCreateGame {
				report.WouldCreate++
			} else {
				report.WouldLinkExisting++
			}
			for _, n := range d.MissingCompanies {
				missing[n] = struct{}{}
			}
		}
		if len(recs) < page {
			break
		}
	}
	report.MissingCompanies = len(missing)
	return report, nil
}
