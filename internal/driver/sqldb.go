package driver

import (
	"context"
	"database/sql"

	"github.com/carlosnayan/onela-go/internal/cache"
)

// SQLDBAdapter adapts *sql.DB to the driver.DB interface. With a statement
// cache every query goes through a prepared statement that is reused across
// calls and transactions.
type SQLDBAdapter struct {
	db    *sql.DB
	stmts *cache.StmtCache

	stopCleanup context.CancelFunc
}

// SQLOption configures a SQLDBAdapter
type SQLOption func(*SQLDBAdapter)

// WithStmtCache enables prepared statement reuse
func WithStmtCache(c *cache.StmtCache) SQLOption {
	return func(a *SQLDBAdapter) {
		a.stmts = c
	}
}

// NewSQLDB creates a new adapter from *sql.DB
func NewSQLDB(db *sql.DB, opts ...SQLOption) *SQLDBAdapter {
	a := &SQLDBAdapter{db: db}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func noRelease() {}

// prepare returns the cached statement for query, or nil without a cache.
// release must be called once the statement is no longer used.
func (a *SQLDBAdapter) prepare(ctx context.Context, query string) (*sql.Stmt, func(), error) {
	if a.stmts == nil {
		return nil, noRelease, nil
	}
	return a.stmts.Prepare(ctx, a.db, query)
}

// Exec executes a query that doesn't return rows
func (a *SQLDBAdapter) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	stmt, release, err := a.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer release()
	var res sql.Result
	if stmt != nil {
		res, err = stmt.ExecContext(ctx, args...)
	} else {
		res, err = a.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: res}, nil
}

// Query executes a query that returns multiple rows
func (a *SQLDBAdapter) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	stmt, release, err := a.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	var rows *sql.Rows
	if stmt != nil {
		rows, err = stmt.QueryContext(ctx, args...)
	} else {
		rows, err = a.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		release()
		return nil, err
	}
	return &SQLRows{rows: rows, release: release}, nil
}

// QueryRow executes a query that returns a single row
func (a *SQLDBAdapter) QueryRow(ctx context.Context, query string, args ...any) Row {
	stmt, release, err := a.prepare(ctx, query)
	if err != nil {
		return errRow{err: err}
	}
	if stmt != nil {
		return &stmtRow{row: stmt.QueryRowContext(ctx, args...), release: release}
	}
	return a.db.QueryRowContext(ctx, query, args...)
}

// Begin starts a transaction
func (a *SQLDBAdapter) Begin(ctx context.Context) (Tx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &SQLTx{tx: tx, stmts: a.stmts, db: a.db}, nil
}

// SQLDB returns the underlying *sql.DB
func (a *SQLDBAdapter) SQLDB() *sql.DB {
	return a.db
}

// Close closes cached statements and the database
func (a *SQLDBAdapter) Close() error {
	if a.stopCleanup != nil {
		a.stopCleanup()
	}
	if a.stmts != nil {
		a.stmts.Close()
	}
	return a.db.Close()
}

// SQLResult wraps sql.Result
type SQLResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected, or 0 when the driver
// cannot report it
func (r *SQLResult) RowsAffected() int64 {
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// SQLRows wraps *sql.Rows
type SQLRows struct {
	rows    *sql.Rows
	release func()
}

func (r *SQLRows) Close() {
	r.rows.Close()
	if r.release != nil {
		r.release()
	}
}

func (r *SQLRows) Err() error                 { return r.rows.Err() }
func (r *SQLRows) Next() bool                 { return r.rows.Next() }
func (r *SQLRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *SQLRows) Columns() ([]string, error) { return r.rows.Columns() }

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error {
	return r.err
}

// stmtRow releases its cached statement once scanned
type stmtRow struct {
	row     *sql.Row
	release func()
}

func (r *stmtRow) Scan(dest ...any) error {
	defer r.release()
	return r.row.Scan(dest...)
}

// SQLTx wraps *sql.Tx. Cached statements are rebound to the transaction.
type SQLTx struct {
	tx    *sql.Tx
	db    *sql.DB
	stmts *cache.StmtCache
}

// stmt rebinds the cached statement for query to the transaction. The
// cached statement stays referenced until release.
func (t *SQLTx) stmt(ctx context.Context, query string) (*sql.Stmt, func(), error) {
	if t.stmts == nil {
		return nil, noRelease, nil
	}
	s, release, err := t.stmts.Prepare(ctx, t.db, query)
	if err != nil {
		return nil, nil, err
	}
	return t.tx.StmtContext(ctx, s), release, nil
}

// Commit commits the transaction
func (t *SQLTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

// Rollback rolls back the transaction
func (t *SQLTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

// Exec executes a query that doesn't return rows
func (t *SQLTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	stmt, release, err := t.stmt(ctx, query)
	if err != nil {
		return nil, err
	}
	defer release()
	var res sql.Result
	if stmt != nil {
		res, err = stmt.ExecContext(ctx, args...)
	} else {
		res, err = t.tx.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: res}, nil
}

// Query executes a query that returns multiple rows
func (t *SQLTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	stmt, release, err := t.stmt(ctx, query)
	if err != nil {
		return nil, err
	}
	var rows *sql.Rows
	if stmt != nil {
		rows, err = stmt.QueryContext(ctx, args...)
	} else {
		rows, err = t.tx.QueryContext(ctx, query, args...)
	}
	if err != nil {
		release()
		return nil, err
	}
	return &SQLRows{rows: rows, release: release}, nil
}

// QueryRow executes a query that returns a single row
func (t *SQLTx) QueryRow(ctx context.Context, query string, args ...any) Row {
	stmt, release, err := t.stmt(ctx, query)
	if err != nil {
		return errRow{err: err}
	}
	if stmt != nil {
		return &stmtRow{row: stmt.QueryRowContext(ctx, args...), release: release}
	}
	return t.tx.QueryRowContext(ctx, query, args...)
}
