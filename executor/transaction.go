package executor

import (
	"context"

	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/logger"
)

// Transaction represents a database transaction. Its embedded Executor runs
// statements inside the transaction.
type Transaction struct {
	*Executor
	tx     driver.Tx
	cancel context.CancelFunc
	opID   string
}

// TransactionFunc is a function that executes within a transaction
type TransactionFunc func(*Transaction) error

// Begin starts a new transaction bounded by the transaction timeout. The
// timeout context lives until Commit or Rollback.
func (e *Executor) Begin(ctx context.Context) (*Transaction, error) {
	if e.InTx() {
		return nil, errors.ErrTxStarted
	}

	txCtx, cancel := e.timeouts.WithTransactionTimeout(ctx)
	tx, err := e.db.Begin(txCtx)
	if err != nil {
		cancel()
		return nil, errors.WrapError(mapError(txCtx, err, errors.OpExec), "failed to begin transaction")
	}

	inner := *e
	inner.db = nil
	inner.q = tx

	t := &Transaction{Executor: &inner, tx: tx, cancel: cancel, opID: logger.NewOperationID()}
	e.logger.Info("[%s] transaction started", t.opID)
	return t, nil
}

// Commit commits the transaction
func (t *Transaction) Commit(ctx context.Context) error {
	defer t.cancel()
	if err := t.tx.Commit(ctx); err != nil {
		t.logger.Error("[%s] commit failed: %v", t.opID, err)
		return errors.MapDriverError(err, errors.OpExec)
	}
	t.logger.Info("[%s] transaction committed", t.opID)
	return nil
}

// Rollback rolls back the transaction
func (t *Transaction) Rollback(ctx context.Context) error {
	defer t.cancel()
	if err := t.tx.Rollback(ctx); err != nil {
		return errors.MapDriverError(err, errors.OpExec)
	}
	t.logger.Info("[%s] transaction rolled back", t.opID)
	return nil
}

// ExecuteTransaction executes fn within a transaction. If fn returns an
// error or panics, the transaction is rolled back.
func (e *Executor) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := e.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// ExecuteSequential runs operations in order within one transaction,
// stopping at the first error.
func (e *Executor) ExecuteSequential(ctx context.Context, operations ...TransactionFunc) error {
	return e.ExecuteTransaction(ctx, func(tx *Transaction) error {
		for _, op := range operations {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
