// Package reconcile holds the offline repair passes over ga_games. Both passes hard-delete rows
// and cannot be undone; they refuse to run without explicit confirmation.
package reconcile

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/games-aggregator/internal/aggregation/canonical"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
	"github.com/yungbote/games-aggregator/internal/pkg/logger"
)

const scanPage = 1000

// Report lists what a pass removed, or would remove when Confirmed is false.
type Report struct {
	Operation  string   `json:"operation"`
	Confirmed  bool     `json:"confirmed"`
	Scanned    int      `json:"scanned"`
	Groups     int      `json:"groups,omitempty"`
	DeletedIDs []uint64 `json:"deleted_ids"`
}

type Reconciler interface {
	// DedupeBySlug keeps the lowest id of every slug held by more than one row.
	DedupeBySlug(ctx context.Context, confirm bool) (Report, error)
	// DeleteMismatchedSlugs removes rows whose slug is empty or differs from the name's slug.
	DeleteMismatchedSlugs(ctx context.Context, confirm bool) (Report, error)
}

type reconciler struct {
	db    *gorm.DB
	log   *logger.Logger
	games repos.GameRepo
	write aggregates.BaseDeps
}

func NewReconciler(db *gorm.DB, log *logger.Logger, games repos.GameRepo, hooks aggregates.Hooks) Reconciler {
	return &reconciler{
		db:    db,
		log:   log.With("service", "Reconciler"),
		games: games,
		write: aggregates.BaseDeps{DB: db, Log: log, Runner: aggregates.NewGormTxRunner(db), Hooks: hooks},
	}
}

func (r *reconciler) DedupeBySlug(ctx context.Context, confirm bool) (Report, error) {
	report := Report{Operation: "dedupe_slugs", Confirmed: confirm, DeletedIDs: []uint64{}}
	groups, err := r.games.DuplicateSlugGroups(dbctx.Context{Ctx: ctx, Tx: r.db})
	if err != nil {
		return report, fmt.Errorf("find duplicate slugs: %w", err)
	}
	report.Groups = len(groups)
	for _, g := range groups {
		report.Scanned += len(g.IDs)
		// IDs are ascending; the first one survives.
		report.DeletedIDs = append(report.DeletedIDs, g.IDs[1:]...)
	}
	return r.apply(ctx, report)
}

func (r *reconciler) DeleteMismatchedSlugs(ctx context.Context, confirm bool) (Report, error) {
	report := Report{Operation: "delete_mismatched_slugs", Confirmed: confirm, DeletedIDs: []uint64{}}
	read := dbctx.Context{Ctx: ctx, Tx: r.db}
	var after uint64
	for {
		page, err := r.games.ListAfter(read, after, scanPage)
		if err != nil {
			return report, fmt.Errorf("scan games after %d: %w", after, err)
		}
		for _, g := range page {
			report.Scanned++
			after = g.ID
			if g.Slug == "" || g.Slug != canonical.MakeSlug(g.Name) {
				report.DeletedIDs = append(report.DeletedIDs, g.ID)
			}
		}
		if len(page) < scanPage {
			break
		}
	}
	return r.apply(ctx, report)
}

func (r *reconciler) apply(ctx context.Context, report Report) (Report, error) {
	if len(report.DeletedIDs) == 0 {
		return report, nil
	}
	if !report.Confirmed {
		return report, fmt.Errorf("%s would delete %d games: %w", report.Operation, len(report.DeletedIDs), pkgerrors.ErrConfirmationRequired)
	}
	err := aggregates.ExecuteWrite(ctx, r.write, "reconcile."+report.Operation, func(dbc dbctx.Context) error {
		return r.games.FullDeleteByIDs(dbc, report.DeletedIDs)
	})
	if err != nil {
		return report, err
	}
	r.log.Warn("deleted canonical games", "operation", report.Operation, "count", len(report.DeletedIDs), "ids", report.DeletedIDs)
	return report, nil
}
