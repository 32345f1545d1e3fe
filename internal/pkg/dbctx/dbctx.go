package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// Context returns the wrapped context, falling back to Background.
func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// DB returns the transaction when one is set, otherwise fallback bound to the context.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	if c.Tx != nil {
		return c.Tx
	}
	return fallback.WithContext(c.Context())
}

// WithTx returns a copy of c that runs against tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Ctx, Tx: tx}
}
