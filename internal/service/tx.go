package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxBeginner starts database transactions. *pgxpool.Pool implements it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withinTx runs fn inside a transaction so a ticket mutation and its
// history entry commit or roll back together. With no database configured
// (unit tests over in-memory repositories) fn runs directly with a nil tx.
func withinTx(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error) error {
	if db == nil {
		return fn(nil)
	}
	return pgx.BeginFunc(ctx, db, fn)
}
