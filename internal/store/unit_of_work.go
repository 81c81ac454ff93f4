package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrUnitClosed is returned when a finished unit of work is used again.
var ErrUnitClosed = errors.New("unit of work already finished")

// UnitOfWork is one pooled connection holding one transaction. Callers must
// defer Close, which rolls back unless Commit succeeded:
//
//	uow, err := pool.Begin(ctx)
//	if err != nil { ... }
//	defer uow.Close()
//	... uow.ExecContext(...) ...
//	return uow.Commit()
type UnitOfWork struct {
	tx   *sql.Tx
	done bool
}

// Begin acquires a connection and opens a write transaction on it.
func (p *Pool) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &UnitOfWork{tx: tx}, nil
}

// ExecContext executes a statement inside the transaction.
func (u *UnitOfWork) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if u.done {
		return nil, ErrUnitClosed
	}
	return u.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query inside the transaction.
func (u *UnitOfWork) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if u.done {
		return nil, ErrUnitClosed
	}
	return u.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query inside the transaction.
func (u *UnitOfWork) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return u.tx.QueryRowContext(ctx, query, args...)
}

// Commit makes the transaction durable and releases the connection.
func (u *UnitOfWork) Commit() error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the transaction and releases the connection.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return ErrUnitClosed
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Close rolls back if the unit has not been committed. It is safe to call
// after Commit or Rollback.
func (u *UnitOfWork) Close() {
	if u == nil || u.done {
		return
	}
	_ = u.Rollback()
}
