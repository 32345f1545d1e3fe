package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	jobsrepo "github.com/yungbote/games-aggregator/internal/data/repos/jobs"
	"github.com/yungbote/games-aggregator/internal/data/repos/testutil"
	types "github.com/yungbote/games-aggregator/internal/domain"
	domainjobs "github.com/yungbote/games-aggregator/internal/domain/jobs"
	"github.com/yungbote/games-aggregator/internal/jobs/runtime"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

type flakyHandler struct {
	calls    int
	failures int
}

func (h *flakyHandler) Type() string { return "aggregate_source" }

func (h *flakyHandler) Run(jc *runtime.Context) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("could not obtain lock")
	}
	jc.Succeed(map[string]int{"calls": h.calls})
	return nil
}

func TestWorkerRetriesUpToMaxAttempts(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := jobsrepo.NewJobRunRepo(tx, testutil.Logger(t))

	cases := []struct {
		name       string
		failures   int
		wantCalls  int
		wantStatus string
	}{
		{name: "succeeds first try", failures: 0, wantCalls: 1, wantStatus: domainjobs.StatusSucceeded},
		{name: "succeeds on third try", failures: 2, wantCalls: 3, wantStatus: domainjobs.StatusSucceeded},
		{name: "exhausts attempts", failures: 5, wantCalls: 3, wantStatus: domainjobs.StatusFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &flakyHandler{failures: tc.failures}
			reg := runtime.NewRegistry()
			if err := reg.Register(h); err != nil {
				t.Fatalf("Register: %v", err)
			}
			w := NewWorker(testutil.Logger(t), repo, reg, nil, Config{Concurrency: 1, RetryDelay: time.Hour})

			now := time.Now()
			job := &types.JobRun{JobType: h.Type(), Status: domainjobs.StatusQueued, CreatedAt: now, UpdatedAt: now}
			if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
				t.Fatalf("Create: %v", err)
			}

			for i := 0; i < 5; i++ {
				if !w.RunOnce(ctx) {
					break
				}
				got := load(t, repo, job.ID)
				if got.Status != domainjobs.StatusFailed {
					continue
				}
				// Still inside the retry delay: nothing runnable.
				if w.RunOnce(ctx) {
					t.Fatalf("claimed a failed job before its retry delay")
				}
				past := time.Now().Add(-2 * time.Hour)
				if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{"last_error_at": past}); err != nil {
					t.Fatalf("UpdateFields: %v", err)
				}
			}

			got := load(t, repo, job.ID)
			if h.calls != tc.wantCalls {
				t.Fatalf("calls=%d want %d", h.calls, tc.wantCalls)
			}
			if got.Status != tc.wantStatus || got.Attempts != tc.wantCalls {
				t.Fatalf("status=%s attempts=%d, want %s/%d", got.Status, got.Attempts, tc.wantStatus, tc.wantCalls)
			}
		})
	}
}

func TestWorkerStartStops(t *testing.T) {
	db := testutil.DB(t)
	repo := jobsrepo.NewJobRunRepo(db, testutil.Logger(t))
	w := NewWorker(testutil.Logger(t), repo, runtime.NewRegistry(), nil, Config{Concurrency: 2, PollInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker loops did not stop")
	}
}

func load(t *testing.T, repo jobsrepo.JobRunRepo, id uuid.UUID) *types.JobRun {
	t.Helper()
	rows, err := repo.GetByIDs(dbctx.Context{Ctx: context.Background()}, []uuid.UUID{id})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	return rows[0]
}
