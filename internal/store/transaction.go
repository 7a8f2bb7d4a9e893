package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mwelles/retention-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back
// if it returns an error. In-memory implementations may pass a nil tx.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// TxManager abstracts transaction execution so services can run multiple
// store operations atomically without depending on *sql.DB directly.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn TxFn) error
}

// sqlTxManager is the database-backed TxManager.
type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TxManager over the given database connection.
func NewTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

// RunInTransaction implements TxManager.
func (m *sqlTxManager) RunInTransaction(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, m.db, fn)
}

// RunInTransaction executes the given function within a database
// transaction. If the function returns an error, the transaction is rolled
// back; otherwise it is committed. Panics roll back before re-panicking.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %v", ErrTransactionFailed, err)
	}

	return nil
}
