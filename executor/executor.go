// Package executor runs statements produced by the builder package against
// a driver.DB, binding parameters the way the target dialect expects.
package executor

import (
	"context"
	"time"

	"github.com/carlosnayan/onela-go/builder"
	contextutil "github.com/carlosnayan/onela-go/internal/context"
	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/limits"
	"github.com/carlosnayan/onela-go/internal/logger"
	"github.com/carlosnayan/onela-go/internal/query"
)

// DefaultSlowQueryThreshold is the duration above which a query is logged as slow.
const DefaultSlowQueryThreshold = time.Second

// Executor executes built statements. An Executor obtained from a
// Transaction runs every statement inside that transaction.
type Executor struct {
	db       driver.DB
	q        driver.Querier
	dialect  dialect.Dialect
	timeouts contextutil.Timeouts
	logger   *logger.Logger
	slow     time.Duration
	maxRows  int
	repeats  *query.RepeatDetector
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger replaces the default logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeouts sets the query and transaction timeouts.
func WithTimeouts(t contextutil.Timeouts) Option {
	return func(e *Executor) {
		e.timeouts = t
	}
}

// WithSlowQueryThreshold sets when a query is reported as slow. Zero disables it.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(e *Executor) {
		e.slow = d
	}
}

// WithMaxRows bounds how many rows a single query may return.
func WithMaxRows(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxRows = n
		}
	}
}

// WithRepeatDetector warns when the same statement runs repeatedly in a
// short window, the usual sign of an N+1 access pattern.
func WithRepeatDetector(d *query.RepeatDetector) Option {
	return func(e *Executor) {
		e.repeats = d
	}
}

// New creates an Executor for db. d must be the dialect the statements were
// built for.
func New(db driver.DB, d dialect.Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:       db,
		q:        db,
		dialect:  d,
		timeouts: contextutil.Defaults(),
		logger:   logger.GetDefaultLogger(),
		slow:     DefaultSlowQueryThreshold,
		maxRows:  limits.MaxScanRows,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the dialect statements are bound for.
func (e *Executor) Dialect() dialect.Dialect {
	return e.dialect
}

// DB returns the underlying database, or nil inside a transaction.
func (e *Executor) DB() driver.DB {
	return e.db
}

// InTx reports whether the executor runs inside a transaction.
func (e *Executor) InTx() bool {
	return e.db == nil
}

// Logger returns the logger used for query logs.
func (e *Executor) Logger() *logger.Logger {
	return e.logger
}

// args binds the statement parameters for the driver.
func (e *Executor) args(b *builder.Built) ([]any, error) {
	if b.Dialect != "" && b.Dialect != e.dialect.Name() {
		return nil, errors.Newf(errors.ErrUnsupportedDialect, "statement built for %s, executor uses %s", b.Dialect, e.dialect.Name())
	}
	return e.dialect.Bind(b.Params, b.ParamName), nil
}

// mapError converts a driver failure, reporting a timeout when ctx expired.
func mapError(ctx context.Context, err error, op errors.OperationType) error {
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return errors.WrapOnelaError(errors.ErrTimeout, err)
	}
	return errors.MapDriverError(err, op)
}

// Query runs a row-returning statement and scans every row into a map
// keyed by column name.
func (e *Executor) Query(ctx context.Context, b *builder.Built, op errors.OperationType) ([]map[string]any, error) {
	args, err := e.args(b)
	if err != nil {
		return nil, err
	}

	ctx, cancel := e.timeouts.WithQueryTimeout(ctx)
	defer cancel()

	opID := logger.NewOperationID()
	start := time.Now()
	rows, err := e.q.Query(ctx, b.SQL, args...)
	if err != nil {
		e.logFailure(opID, b.SQL, args, err)
		return nil, mapError(ctx, err, op)
	}
	defer rows.Close()

	result, err := ScanMaps(rows, e.maxRows)
	duration := time.Since(start)
	e.logQuery(opID, b.SQL, args, duration)
	if err != nil {
		e.logFailure(opID, b.SQL, args, err)
		return nil, mapError(ctx, err, op)
	}
	e.logger.Rows(opID, int64(len(result)), duration)
	return result, nil
}

// QueryRow runs a statement expected to return one row and scans it into
// dest. A missing row is mapped according to op.
func (e *Executor) QueryRow(ctx context.Context, b *builder.Built, op errors.OperationType, dest ...any) error {
	args, err := e.args(b)
	if err != nil {
		return err
	}

	ctx, cancel := e.timeouts.WithQueryTimeout(ctx)
	defer cancel()

	opID := logger.NewOperationID()
	start := time.Now()
	err = e.q.QueryRow(ctx, b.SQL, args...).Scan(dest...)
	e.logQuery(opID, b.SQL, args, time.Since(start))
	if err != nil {
		e.logFailure(opID, b.SQL, args, err)
		return mapError(ctx, err, op)
	}
	return nil
}

// Exec runs a statement that returns no rows and reports the affected row count.
func (e *Executor) Exec(ctx context.Context, b *builder.Built, op errors.OperationType) (int64, error) {
	args, err := e.args(b)
	if err != nil {
		return 0, err
	}

	ctx, cancel := e.timeouts.WithQueryTimeout(ctx)
	defer cancel()

	opID := logger.NewOperationID()
	start := time.Now()
	res, err := e.q.Exec(ctx, b.SQL, args...)
	duration := time.Since(start)
	e.logQuery(opID, b.SQL, args, duration)
	if err != nil {
		e.logFailure(opID, b.SQL, args, err)
		return 0, mapError(ctx, err, op)
	}
	n := res.RowsAffected()
	e.logger.Rows(opID, n, duration)
	return n, nil
}

// raw wraps hand-written SQL so it goes through the same binding path.
func (e *Executor) raw(query string, args []any) (*builder.Built, error) {
	if len(query) > limits.MaxRawQuerySize {
		return nil, errors.Newf(errors.ErrLimitExceeded, "raw query of %d bytes", len(query))
	}
	if args == nil {
		args = []any{}
	}
	return &builder.Built{SQL: query, Params: args, Dialect: e.dialect.Name()}, nil
}

// RawQuery executes hand-written SQL that returns rows. Placeholders must
// already use the dialect's syntax.
//
// Example:
//
//	rows, err := exec.RawQuery(ctx, `
//	    SELECT u.*, t.tenant_name
//	    FROM users u
//	    JOIN tenants t ON u.id_tenant = t.id_tenant
//	    WHERE t.id_tenant = $1
//	`, tenantID)
func (e *Executor) RawQuery(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	b, err := e.raw(query, args)
	if err != nil {
		return nil, err
	}
	return e.Query(ctx, b, errors.OpQuery)
}

// RawExec executes a hand-written SQL command (INSERT, UPDATE, DELETE, DDL).
func (e *Executor) RawExec(ctx context.Context, query string, args ...any) (int64, error) {
	b, err := e.raw(query, args)
	if err != nil {
		return 0, err
	}
	return e.Exec(ctx, b, errors.OpExec)
}
