package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/games-aggregator/internal/pkg/errors"
)

func TestCatalogService(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)
	r := repos.New(tx, log)
	engine := ingest.NewEngine(tx, log, r, nil)
	svc := NewCatalogService(log, r, engine)

	testutil.SeedSteamApp(t, ctx, tx, &types.SteamApp{
		AppID: 2280, Name: "Doom", ReleaseDate: "1993-12-10", DetailType: "game",
		Developers: testutil.Names("id Software"), Publishers: testutil.Names("GT Interactive"),
		Categories: testutil.Names("Single-player"), Genres: testutil.Names("Action"),
	})

	report, err := svc.DryRun(ctx, sources.KindSteam, 0)
	if err != nil {
		t.Fatalf("DryRun: %v", err)
	}
	if report.Scanned != 1 || report.WouldCreate != 1 {
		t.Fatalf("dry run: %+v", report)
	}

	p, err := engine.Pipeline(sources.KindSteam)
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	if _, err := p.Run(ctx, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	view, err := svc.GetView(dbc, "doom")
	if err != nil {
		t.Fatalf("GetView: %v", err)
	}
	if view.SteamAppID == nil || *view.SteamAppID == 0 || view.ReleaseYear == nil || *view.ReleaseYear != 1993 {
		t.Fatalf("view game: %+v", view.Game)
	}
	if len(view.Developers) != 1 || view.Developers[0] != "id Software" ||
		len(view.Publishers) != 1 || len(view.Categories) != 1 || len(view.Genres) != 1 {
		t.Fatalf("view associations: %+v", view)
	}

	bySource, err := svc.GetBySource(dbc, sources.KindSteam, *view.SteamAppID)
	if err != nil || bySource.ID != view.ID || len(bySource.Developers) != 1 {
		t.Fatalf("GetBySource(steam): view=%+v err=%v", bySource, err)
	}
	if _, err := svc.GetBySource(dbc, sources.KindGog, *view.SteamAppID); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetBySource(unlinked gog): %v", err)
	}
	if _, err := svc.GetBySource(dbc, sources.Kind("itch"), 1); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("GetBySource(unknown kind): %v", err)
	}

	// Steam records may also sit in the secondary slot.
	second := uint64(90001)
	quake := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Quake", Slug: "quake", SecondSteamAppID: &second})
	if got, err := svc.GetBySource(dbc, sources.KindSteam, second); err != nil || got.ID != quake.ID {
		t.Fatalf("GetBySource(secondary): view=%+v err=%v", got, err)
	}

	if n, err := svc.Count(dbc); err != nil || n != 2 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
	if _, err := svc.GetView(dbc, "hexen"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetView(missing): %v", err)
	}
	if _, err := svc.GetView(dbc, " "); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("GetView(blank): %v", err)
	}
}
