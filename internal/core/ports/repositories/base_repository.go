package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager exposes explicit transaction control so services can run
// multi-repository writes atomically.
type TransactionManager interface {
	// Begin opens a new database transaction.
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits the given transaction.
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback aborts the given transaction.
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// RepositoryWithTx marks repositories whose write methods accept a pgx.Tx.
type RepositoryWithTx interface {
	TransactionManager
}
