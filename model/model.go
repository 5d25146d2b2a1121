// Package model is a table-bound CRUD facade over the builder and the
// executor. Rows are returned as maps keyed by column name.
package model

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/executor"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/identifier"
)

// Model runs statements against one table.
type Model struct {
	exec    *executor.Executor
	builder *builder.Builder
	table   string
}

// List is a page of rows plus the total number of rows matching the
// filters, ignoring pagination.
type List struct {
	Rows  []map[string]any `json:"data"`
	Total int64            `json:"recordsTotal"`
}

// New binds a Model to table. The builder is created for the executor's
// dialect.
func New(exec *executor.Executor, table string, opts ...builder.Option) (*Model, error) {
	if _, err := identifier.Validate(table); err != nil {
		return nil, err
	}
	return &Model{
		exec:    exec,
		builder: builder.NewWithDialect(exec.Dialect(), opts...),
		table:   table,
	}, nil
}

// Table returns the table name.
func (m *Model) Table() string {
	return m.table
}

// Builder returns the builder used to compile statements.
func (m *Model) Builder() *builder.Builder {
	return m.builder
}

// Executor returns the executor statements run on.
func (m *Model) Executor() *executor.Executor {
	return m.exec
}

func (m *Model) configs() builder.Configs {
	return builder.Configs{TableName: m.table}
}

// Find returns every row matching p.
func (m *Model) Find(ctx context.Context, p builder.QueryParams) ([]map[string]any, error) {
	p.Configs = m.configs()
	b, err := m.builder.BuildSelect(p)
	if err != nil {
		return nil, err
	}
	return m.exec.Query(ctx, b, errors.OpFind)
}

// FindOne returns the first row matching p, or ErrNotFound.
func (m *Model) FindOne(ctx context.Context, p builder.QueryParams) (map[string]any, error) {
	p.Configs = m.configs()
	p.Limit = []int{0, 1}
	b, err := m.builder.BuildSelect(p)
	if err != nil {
		return nil, err
	}
	rows, err := m.exec.Query(ctx, b, errors.OpFindOne)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "table %s", m.table)
	}
	return rows[0], nil
}

// FindList returns one page of rows and the total count. Outside a
// transaction both queries run concurrently.
func (m *Model) FindList(ctx context.Context, p builder.QueryParams) (*List, error) {
	p.Configs = m.configs()
	sel, err := m.builder.BuildSelect(p)
	if err != nil {
		return nil, err
	}
	cnt, err := m.builder.BuildCount(p)
	if err != nil {
		return nil, err
	}

	list := &List{}
	if m.exec.InTx() {
		// a transaction holds a single connection
		if list.Rows, err = m.exec.Query(ctx, sel, errors.OpFindList); err != nil {
			return nil, err
		}
		if err := m.exec.QueryRow(ctx, cnt, errors.OpFindList, &list.Total); err != nil {
			return nil, err
		}
		return list, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := m.exec.Query(gctx, sel, errors.OpFindList)
		list.Rows = rows
		return err
	})
	g.Go(func() error {
		return m.exec.QueryRow(gctx, cnt, errors.OpFindList, &list.Total)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return list, nil
}

// Count returns the number of rows matching p.
func (m *Model) Count(ctx context.Context, p builder.QueryParams) (int64, error) {
	p.Configs = m.configs()
	b, err := m.builder.BuildCount(p)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := m.exec.QueryRow(ctx, b, errors.OpCount, &total); err != nil {
		return 0, err
	}
	return total, nil
}

// Aggregate runs the aggregate functions of p, one row per group.
func (m *Model) Aggregate(ctx context.Context, p builder.AggregateParams) ([]map[string]any, error) {
	p.Configs = m.configs()
	b, err := m.builder.BuildAggregate(p)
	if err != nil {
		return nil, err
	}
	return m.exec.Query(ctx, b, errors.OpAggregate)
}

// supportsReturning reports whether inserted rows can be read back in the
// same statement.
func (m *Model) supportsReturning() bool {
	switch m.exec.Dialect().Name() {
	case "postgresql", "sqlite", "sqlserver":
		return true
	}
	return false
}

// Insert inserts one row. With Returning set on a dialect that supports it
// the returned map holds the returned columns; otherwise it is p.Row.
func (m *Model) Insert(ctx context.Context, p builder.InsertParams) (map[string]any, error) {
	p.Configs = m.configs()
	b, err := m.builder.BuildInsert(p)
	if err != nil {
		return nil, err
	}
	if len(p.Returning) > 0 && m.supportsReturning() {
		rows, err := m.exec.Query(ctx, b, errors.OpInsert)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows[0], nil
		}
		return p.Row, nil
	}
	if _, err := m.exec.Exec(ctx, b, errors.OpInsert); err != nil {
		return nil, err
	}
	return p.Row, nil
}

// InsertBatch inserts every row of p in one statement. The result follows
// the same rule as Insert.
func (m *Model) InsertBatch(ctx context.Context, p builder.BatchInsertParams) ([]map[string]any, error) {
	p.Configs = m.configs()
	b, err := m.builder.BuildBatchInsert(p)
	if err != nil {
		return nil, err
	}
	if len(p.Returning) > 0 && m.supportsReturning() {
		return m.exec.Query(ctx, b, errors.OpInsert)
	}
	if _, err := m.exec.Exec(ctx, b, errors.OpInsert); err != nil {
		return nil, err
	}
	return p.Rows, nil
}

// Update applies p and returns the number of affected rows. A request
// whose conditions all compile away is refused with ErrEmptyWhere.
func (m *Model) Update(ctx context.Context, p builder.UpdateParams) (int64, error) {
	if !builder.HasEffectiveConditions(p.Keyword, p.Where) {
		return 0, errors.Newf(errors.ErrEmptyWhere, "update %s", m.table)
	}
	p.Configs = m.configs()
	b, err := m.builder.BuildUpdate(p)
	if err != nil {
		return 0, err
	}
	return m.exec.Exec(ctx, b, errors.OpUpdate)
}

// Delete removes the rows matching p. Like Update it refuses a request
// without effective conditions.
func (m *Model) Delete(ctx context.Context, p builder.DeleteParams) (int64, error) {
	if !builder.HasEffectiveConditions(p.Keyword, p.Where) {
		return 0, errors.Newf(errors.ErrEmptyWhere, "delete %s", m.table)
	}
	p.Configs = m.configs()
	b, err := m.builder.BuildDelete(p)
	if err != nil {
		return 0, err
	}
	return m.exec.Exec(ctx, b, errors.OpDelete)
}

// WithTx returns a copy of m whose statements run inside tx.
func (m *Model) WithTx(tx *executor.Transaction) *Model {
	cp := *m
	cp.exec = tx.Executor
	return &cp
}

// Transaction runs fn with a transactional copy of m. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (m *Model) Transaction(ctx context.Context, fn func(m *Model) error) error {
	return m.exec.ExecuteTransaction(ctx, func(tx *executor.Transaction) error {
		return fn(m.WithTx(tx))
	})
}
