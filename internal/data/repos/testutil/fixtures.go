package testutil

import (
	"context"
	"testing"

	types "github.com/yungbote/games-aggregator/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedSteamApp(tb testing.TB, ctx context.Context, tx *gorm.DB, app *types.SteamApp) *types.SteamApp {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(app).Error; err != nil {
		tb.Fatalf("seed steam app: %v", err)
	}
	return app
}

func SeedGogGame(tb testing.TB, ctx context.Context, tx *gorm.DB, g *types.GogGame) *types.GogGame {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed gog game: %v", err)
	}
	return g
}

func SeedWikipediaGame(tb testing.TB, ctx context.Context, tx *gorm.DB, g *types.WikipediaGame) *types.WikipediaGame {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed wikipedia game: %v", err)
	}
	return g
}

func SeedPcgwGame(tb testing.TB, ctx context.Context, tx *gorm.DB, g *types.PcgwGame) *types.PcgwGame {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed pcgw game: %v", err)
	}
	return g
}

// SeedGame inserts a canonical row as is; callers pick the slug.
func SeedGame(tb testing.TB, ctx context.Context, tx *gorm.DB, g *types.Game) *types.Game {
	tb.Helper()
	if g.Type == "" {
		g.Type = "game"
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed game: %v", err)
	}
	return g
}

func Names(v ...string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](v)
}

func CountRows(tb testing.TB, ctx context.Context, tx *gorm.DB, table string) int64 {
	tb.Helper()
	var n int64
	if err := tx.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}
