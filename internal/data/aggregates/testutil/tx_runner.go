package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/games-aggregator/internal/data/aggregates"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
)

// InjectedTxRunner is a TxRunner for pipeline tests.
// It counts begin/commit/rollback and injects failures. With Inner set the body runs in a
// real transaction; otherwise it runs with no Tx.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner aggregates.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error
	// FailOnCall fails the n-th InTx call (1-based) before its body runs.
	FailOnCall map[int]error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	call := r.BeginCalls
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	if err, ok := r.FailOnCall[call]; ok && failBeforeBody == nil {
		failBeforeBody = err
	}
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.rollback()
		return failBeforeBody
	}
	if fn == nil {
		r.commit()
		return nil
	}
	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, fn)
	} else {
		err = fn(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.rollback()
		return err
	}
	if failCommit != nil {
		r.rollback()
		return failCommit
	}
	r.commit()
	return nil
}

func (r *InjectedTxRunner) commit() {
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) rollback() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}
