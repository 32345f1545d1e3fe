package aggregates

import (
	"context"
	"fmt"
	"testing"
	"time"

	domainagg "github.com/yungbote/games-aggregator/internal/domain/aggregates"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"gorm.io/gorm"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}

	err := ExecuteWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "ingest.record", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("ExecuteWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Name != "ingest.record" || hooks.Operations[0].Status != "success" {
		t.Fatalf("unexpected operation: %+v", hooks.Operations[0])
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		err := ExecuteWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "ingest.link", func(_ dbctx.Context) error {
			return fmt.Errorf("link steam_app_id: %w", gorm.ErrDuplicatedKey)
		})
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "ingest.link" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		err := ExecuteWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, "ingest.record", func(_ dbctx.Context) error {
			return RetryableError("lock timeout")
		})
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "ingest.record" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})
}

func TestExecuteWriteDefaultsOperationName(t *testing.T) {
	hooks := &spyHooks{}
	_ = ExecuteWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "  ", func(_ dbctx.Context) error { return nil })
	if len(hooks.Operations) != 1 || hooks.Operations[0].Name != "aggregate.write" {
		t.Fatalf("unexpected operations: %+v", hooks.Operations)
	}
}

func TestErrorStatus(t *testing.T) {
	if got := errorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := errorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := errorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
