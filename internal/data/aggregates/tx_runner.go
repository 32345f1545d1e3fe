package aggregates

import (
	"context"

	domainagg "github.com/yungbote/games-aggregator/internal/domain/aggregates"
	"github.com/yungbote/games-aggregator/internal/pkg/dbctx"
	"gorm.io/gorm"
)

// TxRunner provides the transaction boundary for per-record writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// Savepoint runs fn in a nested transaction so a failed statement (typically a unique
// violation) rolls back alone instead of poisoning the enclosing transaction.
func Savepoint(dbc dbctx.Context, fallback *gorm.DB, fn func(tx *gorm.DB) error) error {
	return dbc.DB(fallback).Transaction(fn)
}
