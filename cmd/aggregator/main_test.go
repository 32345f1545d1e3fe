package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/aggregation/reconcile"
	"github.com/yungbote/games-aggregator/internal/aggregation/sources"
	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/catalog"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainagg "github.com/yungbote/games-aggregator/internal/domain/aggregates"
	"github.com/yungbote/games-aggregator/internal/observability"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveKinds(t *testing.T) {
	enabled := []sources.Kind{sources.KindSteam, sources.KindGog}
	tests := []struct {
		name    string
		in      []string
		want    []sources.Kind
		wantErr bool
	}{
		{name: "defaults to enabled", want: enabled},
		{name: "explicit with alias and dup", in: []string{"pcgw", "GOG", "gog"}, want: []sources.Kind{sources.KindPcgamingwiki, sources.KindGog}},
		{name: "unknown", in: []string{"itch"}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveKinds(tc.in, enabled)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
	if _, err := resolveKinds(nil, nil); err == nil {
		t.Fatalf("expected error with nothing enabled")
	}
}

func TestPrintReconcileReport(t *testing.T) {
	var out bytes.Buffer
	ids := make([]uint64, 25)
	for i := range ids {
		ids[i] = uint64(i + 1)
	}
	printReconcileReport(&out, reconcile.Report{Operation: "dedupe_slugs", Scanned: 40, Groups: 3, DeletedIDs: ids})
	s := out.String()
	if !strings.Contains(s, "Would delete") || !strings.Contains(s, "... +5") {
		t.Fatalf("unexpected report:\n%s", s)
	}
}

func TestAggregateAndReconcileCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "aggregator.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+dbPath)
	t.Setenv("LOG_MODE", "test")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("AGGREGATOR_CONFIG_FILE", "")
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("REDIS_ADDR", "")

	if out, err := execute(t, "migrate", "--catalogs"); err != nil {
		t.Fatalf("migrate: %v\n%s", err, out)
	}

	db, err := gorm.Open(sqlite.Open("file:"+dbPath), &gorm.Config{Logger: gormLogger.Discard})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	ctx := context.Background()
	testutil.SeedSteamApp(t, ctx, db, &types.SteamApp{
		AppID: 2280, Name: "Doom", ReleaseDate: "1993-12-10", DetailType: "game",
		Developers: testutil.Names("id Software"), Publishers: testutil.Names("GT Interactive"),
	})
	testutil.SeedSteamApp(t, ctx, db, &types.SteamApp{AppID: 1, Name: "Orphan"})
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	out, err := execute(t, "aggregate", "--source", "steam", "--dry-run", "--json")
	if err != nil {
		t.Fatalf("dry run: %v\n%s", err, out)
	}
	var dry struct {
		Reports []ingest.DryRunReport `json:"reports"`
	}
	if err := json.Unmarshal([]byte(out), &dry); err != nil {
		t.Fatalf("decode dry run: %v\n%s", err, out)
	}
	if len(dry.Reports) != 1 || dry.Reports[0].WouldCreate != 1 || dry.Reports[0].SkippedInvalid != 1 {
		t.Fatalf("dry run reports: %+v", dry.Reports)
	}

	out, err = execute(t, "aggregate", "--source", "steam", "--json")
	if err != nil {
		t.Fatalf("aggregate: %v\n%s", err, out)
	}
	var runs struct {
		Runs []ingest.RunStats `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs.Runs) != 1 || runs.Runs[0].Created != 1 || runs.Runs[0].SkippedInvalid != 1 {
		t.Fatalf("runs: %+v", runs.Runs)
	}

	// Second pass finds only the invalid record left.
	out, err = execute(t, "aggregate", "--source", "steam")
	if err != nil {
		t.Fatalf("aggregate again: %v\n%s", err, out)
	}
	if !strings.Contains(out, "steam") {
		t.Fatalf("expected table output, got:\n%s", out)
	}

	out, err = execute(t, "reconcile", "dedupe-slugs")
	if err != nil {
		t.Fatalf("reconcile: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Would delete") {
		t.Fatalf("unexpected reconcile output:\n%s", out)
	}

	out, err = execute(t, "aggregate", "--source", "gog", "--enqueue")
	if err != nil || !strings.Contains(out, "Queued gog job") {
		t.Fatalf("enqueue: %v\n%s", err, out)
	}
	out, err = execute(t, "jobs", "--type", "aggregate_source")
	if err != nil || !strings.Contains(out, "queued") {
		t.Fatalf("jobs: %v\n%s", err, out)
	}
}

type failingAdapter struct {
	kind sources.Kind
	err  error
}

func (a failingAdapter) Kind() sources.Kind { return a.kind }

func (a failingAdapter) Unconsumed(dbctx.Context, uint64, int) ([]sources.Record, error) {
	return nil, a.err
}

func (a failingAdapter) TypeOf(dbctx.Context, uint64) (string, error) { return "", a.err }

func TestRunPipelinesIsolatesSourceFailures(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	titles := []string{"Doom", "Quake", "Hexen", "Heretic", "Strife", "Rise of the Triad"}
	for _, title := range titles {
		testutil.SeedGogGame(t, ctx, tx, &types.GogGame{Title: title, ReleaseDateISO: "1995-01-01",
			Developers: testutil.Names("id Software"), Publishers: testutil.Names("GT Interactive"), GameType: "game"})
	}

	r := repos.New(tx, log)
	r.Sources = sources.NewRegistry(
		failingAdapter{kind: sources.KindSteam, err: aggregates.RetryableError("lock timeout")},
		catalog.NewGogAdapter(tx, log),
	)
	engine := ingest.NewEngine(tx, log, r, observability.NewMetrics())

	stats, err := runPipelines(ctx, engine, []sources.Kind{sources.KindSteam, sources.KindGog}, 1)
	if err == nil || !strings.Contains(err.Error(), "aggregate steam") {
		t.Fatalf("expected steam failure, got %v", err)
	}
	if !domainagg.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if strings.Contains(err.Error(), "aggregate gog") {
		t.Fatalf("gog should not fail: %v", err)
	}
	gog := stats[1]
	if gog.Source != sources.KindGog || gog.Scanned != len(titles) || gog.Created != len(titles) {
		t.Fatalf("gog run was cut short: %+v", gog)
	}
}
