package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domaingames "github.com/yungbote/games-aggregator/internal/domain/games"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

func TestDedupeBySlug(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	r := repos.New(tx, log)
	rec := NewReconciler(tx, log, r.Games, nil)

	if err := tx.Exec("DROP INDEX idx_ga_games_slug").Error; err != nil {
		t.Fatalf("drop slug index: %v", err)
	}
	keep := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Doom", Slug: "doom"})
	dup := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "DOOM", Slug: "doom"})
	other := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Quake", Slug: "quake"})
	if _, err := r.Dictionaries.CreateIgnoreDuplicates(dbc, domaingames.DictCompany, []string{"id Software"}); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	ids, _ := r.Dictionaries.GetByNames(dbc, domaingames.DictCompany, []string{"id Software"})
	if _, err := r.Relations.Attach(dbc, domaingames.RelDevelopers, dup.ID, []uint64{ids["id Software"]}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	report, err := rec.DedupeBySlug(ctx, false)
	if !errors.Is(err, pkgerrors.ErrConfirmationRequired) {
		t.Fatalf("expected confirmation error, got %v", err)
	}
	if report.Groups != 1 || len(report.DeletedIDs) != 1 || report.DeletedIDs[0] != dup.ID {
		t.Fatalf("plan: %+v", report)
	}
	if n := testutil.CountRows(t, ctx, tx, types.Game{}.TableName()); n != 3 {
		t.Fatalf("unconfirmed pass deleted rows: %d left", n)
	}

	report, err = rec.DedupeBySlug(ctx, true)
	if err != nil {
		t.Fatalf("DedupeBySlug: %v", err)
	}
	if len(report.DeletedIDs) != 1 {
		t.Fatalf("report: %+v", report)
	}
	for _, id := range []uint64{keep.ID, other.ID} {
		if g, _ := r.Games.GetByID(dbc, id); g == nil {
			t.Fatalf("game %d removed", id)
		}
	}
	if g, _ := r.Games.GetByID(dbc, dup.ID); g != nil {
		t.Fatalf("duplicate %d survived", dup.ID)
	}
	if n := testutil.CountRows(t, ctx, tx, types.GameDeveloper{}.TableName()); n != 0 {
		t.Fatalf("orphaned developer rows: %d", n)
	}

	again, err := rec.DedupeBySlug(ctx, false)
	if err != nil || again.Groups != 0 {
		t.Fatalf("second pass: %+v err=%v", again, err)
	}
}

func TestDeleteMismatchedSlugs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	r := repos.New(tx, log)
	rec := NewReconciler(tx, log, r.Games, nil)

	good := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Doom Eternal", Slug: "doom-eternal"})
	renamed := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Doom 64", Slug: "doom-eternal-64"})
	empty := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "???", Slug: ""})

	report, err := rec.DeleteMismatchedSlugs(ctx, false)
	if !errors.Is(err, pkgerrors.ErrConfirmationRequired) || len(report.DeletedIDs) != 2 {
		t.Fatalf("plan: %+v err=%v", report, err)
	}
	report, err = rec.DeleteMismatchedSlugs(ctx, true)
	if err != nil || report.Scanned != 3 {
		t.Fatalf("DeleteMismatchedSlugs: %+v err=%v", report, err)
	}
	if g, _ := r.Games.GetByID(dbc, good.ID); g == nil {
		t.Fatalf("consistent row removed")
	}
	for _, id := range []uint64{renamed.ID, empty.ID} {
		if g, _ := r.Games.GetByID(dbc, id); g != nil {
			t.Fatalf("game %d survived", id)
		}
	}
}
