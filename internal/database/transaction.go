package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Transaction wraps a GORM transaction with commit/rollback semantics.
// Commit and Rollback are idempotent; whichever runs first settles the
// transaction and later calls are no-ops.
type Transaction struct {
	tx      *gorm.DB
	settled bool
}

// NewTransaction starts a new database transaction.
func NewTransaction(ctx context.Context, db Database) (Transaction, error) {
	tx := db.Session(ctx).Begin()
	if tx.Error != nil {
		return Transaction{}, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return Transaction{tx: tx}, nil
}

// Session returns the transaction session for executing queries.
func (t Transaction) Session() *gorm.DB {
	return t.tx
}

// Commit commits the transaction.
func (t *Transaction) Commit() error {
	return t.settle(true)
}

// Rollback rolls back the transaction if not already settled.
func (t *Transaction) Rollback() error {
	return t.settle(false)
}

func (t *Transaction) settle(commit bool) error {
	if t.settled {
		return nil
	}

	if commit {
		if err := t.tx.Commit().Error; err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	} else {
		if err := t.tx.Rollback().Error; err != nil {
			return fmt.Errorf("rollback transaction: %w", err)
		}
	}

	t.settled = true
	return nil
}

// WithTransaction executes fn within a transaction, committing on success
// or rolling back on error.
func WithTransaction(ctx context.Context, db Database, fn func(tx *gorm.DB) error) error {
	txn, err := NewTransaction(ctx, db)
	if err != nil {
		return err
	}
	defer func() { _ = txn.Rollback() }()

	if err := fn(txn.Session()); err != nil {
		return err
	}
	return txn.Commit()
}

// WithTransactionResult executes fn within a transaction, returning its
// result when the transaction commits.
func WithTransactionResult[T any](ctx context.Context, db Database, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var result T
	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	return result, err
}
