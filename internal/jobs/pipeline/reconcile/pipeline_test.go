package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"

	aggreconcile "github.com/yungbote/games-aggregator/internal/aggregation/reconcile"
	"github.com/yungbote/games-aggregator/internal/data/repos"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	jobrt "github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

func TestReconcileJob(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	r := repos.New(tx, log)

	reg := jobrt.NewRegistry()
	if err := reg.Register(New(log, aggreconcile.NewReconciler(tx, log, r.Games, nil))); err != nil {
		t.Fatalf("Register: %v", err)
	}

	testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Doom", Slug: "doom"})
	stale := testutil.SeedGame(t, ctx, tx, &types.Game{Name: "Doom II", Slug: "doom-2"})

	run := func(t *testing.T, payload string) (*types.JobRun, error) {
		t.Helper()
		now := time.Now()
		job := &types.JobRun{JobType: JobType, Status: domainjobs.StatusRunning, Payload: datatypes.JSON([]byte(payload)), CreatedAt: now, UpdatedAt: now}
		if _, err := r.JobRuns.Create(dbctx.Context{Ctx: ctx}, []*types.JobRun{job}); err != nil {
			t.Fatalf("Create job: %v", err)
		}
		return job, jobrt.Execute(reg, jobrt.NewContext(ctx, job, r.JobRuns, nil, log))
	}
	decode := func(t *testing.T, job *types.JobRun) aggreconcile.Report {
		t.Helper()
		var rep aggreconcile.Report
		if err := json.Unmarshal(job.Result, &rep); err != nil {
			t.Fatalf("decode report: %v", err)
		}
		return rep
	}

	job, err := run(t, `{"operation":"mismatched-slugs"}`)
	if err != nil || job.Status != domainjobs.StatusSucceeded {
		t.Fatalf("plan run: err=%v status=%s", err, job.Status)
	}
	if rep := decode(t, job); rep.Confirmed || len(rep.DeletedIDs) != 1 || rep.DeletedIDs[0] != stale.ID {
		t.Fatalf("plan: %+v", rep)
	}
	if n := testutil.CountRows(t, ctx, tx, types.Game{}.TableName()); n != 2 {
		t.Fatalf("plan deleted rows: %d left", n)
	}

	job, err = run(t, `{"operation":"mismatched-slugs","confirm":true}`)
	if err != nil {
		t.Fatalf("confirmed run: %v", err)
	}
	if rep := decode(t, job); !rep.Confirmed {
		t.Fatalf("report: %+v", rep)
	}
	if n := testutil.CountRows(t, ctx, tx, types.Game{}.TableName()); n != 1 {
		t.Fatalf("games left: %d", n)
	}

	if _, err := run(t, `{"operation":"vacuum"}`); err == nil {
		t.Fatalf("unknown operation: expected error")
	}
}
