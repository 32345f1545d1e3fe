package aggregate_source

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/games-aggregator/internal/aggregation/ingest"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

func TestAggregateSourceJob(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	r := repos.New(tx, log)

	reg := jobrt.NewRegistry()
	if err := reg.Register(New(log, ingest.NewEngine(tx, log, r, nil))); err != nil {
		t.Fatalf("Register: %v", err)
	}

	testutil.SeedSteamApp(t, ctx, tx, &types.SteamApp{
		AppID: 2280, Name: "Doom", ReleaseDate: "1993-12-10", DetailType: "game",
		Developers: testutil.Names("id Software"), Publishers: testutil.Names("GT Interactive"),
	})
	testutil.SeedSteamApp(t, ctx, tx, &types.SteamApp{
		AppID: 9999, Name: "Orphan", ReleaseDate: "2001",
		Developers: testutil.Names("Solo Dev"),
	})

	run := func(t *testing.T, payload string) (*types.JobRun, error) {
		t.Helper()
		now := time.Now()
		job := &types.JobRun{
			JobType:   JobType,
			Status:    domainjobs.StatusRunning,
			Attempts:  1,
			Payload:   datatypes.JSON([]byte(payload)),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := r.JobRuns.Create(dbctx.Context{Ctx: ctx}, []*types.JobRun{job}); err != nil {
			t.Fatalf("Create job: %v", err)
		}
		err := jobrt.Execute(reg, jobrt.NewContext(ctx, job, r.JobRuns, nil, log))
		return job, err
	}

	job, err := run(t, `{"source":"steam","chunk":1}`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if job.Status != domainjobs.StatusSucceeded {
		t.Fatalf("status=%s error=%q", job.Status, job.Error)
	}
	var stats ingest.RunStats
	if err := json.Unmarshal(job.Result, &stats); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if stats.Source != "steam" || stats.Scanned != 2 || stats.Created != 1 || stats.SkippedInvalid != 1 || stats.Batches != 2 {
		t.Fatalf("stats: %+v", stats)
	}
	if n := testutil.CountRows(t, ctx, tx, types.Game{}.TableName()); n != 1 {
		t.Fatalf("games: %d", n)
	}

	// Second run finds only the invalid record left and changes nothing.
	job, err = run(t, `{"source":"steam"}`)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if err := json.Unmarshal(job.Result, &stats); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if stats.Scanned != 1 || stats.Created != 0 {
		t.Fatalf("rerun stats: %+v", stats)
	}

	job, err = run(t, `{"source":"itch"}`)
	if err == nil || job.Status != domainjobs.StatusFailed {
		t.Fatalf("unknown source: err=%v status=%s", err, job.Status)
	}
}
