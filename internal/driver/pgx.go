package driver

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ DB   = (*PgxPoolAdapter)(nil)
	_ Tx   = (*PgxTx)(nil)
	_ Rows = (*PgxRows)(nil)
)

// pgxQuerier is implemented by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxConn adapts a pgxQuerier to Querier. The PostgreSQL dialect binds
// positional $n arguments as-is, so args go straight to pgx.
type pgxConn struct {
	q pgxQuerier
}

func (c pgxConn) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (c pgxConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &PgxRows{Rows: rows}, nil
}

func (c pgxConn) QueryRow(ctx context.Context, query string, args ...any) Row {
	return c.q.QueryRow(ctx, query, args...)
}

// PgxPoolAdapter adapts *pgxpool.Pool to DB. Selected with
// driver = "pgxpool" in the datasource configuration.
type PgxPoolAdapter struct {
	pgxConn
	pool *pgxpool.Pool
}

// NewPgxPool wraps pool
func NewPgxPool(pool *pgxpool.Pool) *PgxPoolAdapter {
	return &PgxPoolAdapter{pgxConn: pgxConn{q: pool}, pool: pool}
}

// Begin starts a transaction
func (a *PgxPoolAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PgxTx{pgxConn: pgxConn{q: tx}, tx: tx}, nil
}

// SQLDB returns nil: a pgx pool has no *sql.DB
func (a *PgxPoolAdapter) SQLDB() *sql.DB {
	return nil
}

// Close closes all pool connections
func (a *PgxPoolAdapter) Close() error {
	a.pool.Close()
	return nil
}

// Pool returns the underlying pool
func (a *PgxPoolAdapter) Pool() *pgxpool.Pool {
	return a.pool
}

// PgxRows adds Columns to pgx.Rows
type PgxRows struct {
	pgx.Rows
}

// Columns returns the field names of the result set
func (r *PgxRows) Columns() ([]string, error) {
	fields := r.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}

// PgxTx wraps pgx.Tx
type PgxTx struct {
	pgxConn
	tx pgx.Tx
}

func (t *PgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PgxTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
