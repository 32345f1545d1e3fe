package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/jobs/pipeline/aggregate_source"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

type aggregateOptions struct {
	sources []string
	chunk   int
	dryRun  bool
	limit   int
	enqueue bool
	json    bool
}

func newAggregateCommand(ctx *commandContext) *cobra.Command {
	var opts aggregateOptions
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge source catalog records into the canonical games table",
		Long: "Runs one ingestion pipeline per source, in parallel. Without --source every source " +
			"enabled in the config file runs. --dry-run only reports what a run would do.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.chunk < 0 || opts.limit < 0 {
				return fmt.Errorf("--chunk and --limit must not be negative")
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, err := ctx.ensureApp(runCtx)
			if err != nil {
				return err
			}
			kinds, err := resolveKinds(opts.sources, a.Cfg.EnabledSources())
			if err != nil {
				return err
			}

			switch {
			case opts.dryRun:
				reports := make([]ingest.DryRunReport, 0, len(kinds))
				for _, k := range kinds {
					rep, err := a.Services.Catalog.DryRun(runCtx, k, opts.limit)
					if err != nil {
						return fmt.Errorf("dry run %s: %w", k, err)
					}
					reports = append(reports, rep)
				}
				if opts.json {
					return writeJSON(cmd, map[string]any{"reports": reports})
				}
				printDryRunReports(cmd.OutOrStdout(), reports)
				return nil

			case opts.enqueue:
				dbc := dbctx.Context{Ctx: runCtx}
				queued := make([]any, 0, len(kinds))
				for _, k := range kinds {
					job, err := a.Services.Jobs.Enqueue(dbc, aggregate_source.JobType, aggregate_source.Payload{Source: string(k), Chunk: opts.chunk})
					if err != nil {
						return fmt.Errorf("enqueue %s: %w", k, err)
					}
					queued = append(queued, job)
					if !opts.json {
						fmt.Fprintf(cmd.OutOrStdout(), "Queued %s job %s\n", k, job.ID)
					}
				}
				if opts.json {
					return writeJSON(cmd, map[string]any{"jobs": queued})
				}
				return nil
			}

			stats, err := runPipelines(runCtx, a.Services.Engine, kinds, opts.chunk)
			if opts.json {
				if werr := writeJSON(cmd, map[string]any{"runs": stats}); werr != nil {
					return werr
				}
			} else {
				printRunStats(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&opts.sources, "source", "s", nil, "Sources to aggregate (steam, gog, wikipedia, pcgamingwiki)")
	cmd.Flags().IntVar(&opts.chunk, "chunk", 0, "Records per batch (0 uses the per-source default)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what a run would do without writing")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Records scanned per source in a dry run (0 uses the default)")
	cmd.Flags().BoolVar(&opts.enqueue, "enqueue", false, "Queue one job per source instead of running inline")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print JSON")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "enqueue")
	return cmd
}

// resolveKinds parses the --source values. With none given it returns the enabled sources.
func resolveKinds(names []string, enabled []sources.Kind) ([]sources.Kind, error) {
	if len(names) == 0 {
		if len(enabled) == 0 {
			return nil, fmt.Errorf("no sources enabled")
		}
		return enabled, nil
	}
	out := make([]sources.Kind, 0, len(names))
	seen := map[sources.Kind]bool{}
	for _, n := range names {
		k, err := sources.ParseKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// runPipelines runs every kind concurrently and independently: a failing source does not
// cancel the others. Stats are returned in kinds order, including the partial stats of failed
// runs, and the error joins every source's failure.
func runPipelines(ctx context.Context, engine *ingest.Engine, kinds []sources.Kind, chunk int) ([]ingest.RunStats, error) {
	out := make([]ingest.RunStats, len(kinds))
	errs := make([]error, len(kinds))
	var g errgroup.Group
	for i, k := range kinds {
		g.Go(func() error {
			p, err := engine.Pipeline(k)
			if err != nil {
				errs[i] = err
				return nil
			}
			stats, err := p.Run(ctx, chunk)
			out[i] = stats
			if err != nil {
				errs[i] = fmt.Errorf("aggregate %s: %w", k, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}

func printRunStats(out io.Writer, stats []ingest.RunStats) {
	headers := []string{"Source", "Scanned", "Created", "Matched", "Linked", "Secondary", "Unlinked", "Invalid", "Slug collisions", "Duration"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		dur := ""
		if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
			dur = s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			string(s.Source),
			strconv.Itoa(s.Scanned),
			strconv.Itoa(s.Created),
			strconv.Itoa(s.Matched),
			strconv.Itoa(s.LinkedPrimary),
			strconv.Itoa(s.LinkedSecondary),
			strconv.Itoa(s.Unlinked),
			strconv.Itoa(s.SkippedInvalid),
			strconv.Itoa(s.SlugCollisions),
			dur,
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func printDryRunReports(out io.Writer, reports []ingest.DryRunReport) {
	headers := []string{"Source", "Scanned", "Candidates", "Invalid", "Would link", "Would create", "Missing companies"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			string(r.Source),
			strconv.Itoa(r.Scanned),
			strconv.Itoa(r.Candidates),
			strconv.Itoa(r.SkippedInvalid),
			strconv.Itoa(r.WouldLinkExisting),
			strconv.Itoa(r.WouldCreate),
			strconv.Itoa(r.MissingCompanies),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}
