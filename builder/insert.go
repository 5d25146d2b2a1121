package builder

import (
	"sort"

	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/limits"
)

// BuildInsert compiles a single-row INSERT. Returning columns are emitted
// where the dialect supports it (RETURNING, OUTPUT INSERTED) and ignored
// elsewhere.
func (b *Builder) BuildInsert(p InsertParams) (*Built, error) {
	return b.insert(p.Configs, []map[string]any{p.Row}, p.Columns, p.Returning)
}

// BuildBatchInsert compiles a multi-row INSERT. Rows are assumed to share
// the first row's shape; a key missing from a later row binds NULL.
func (b *Builder) BuildBatchInsert(p BatchInsertParams) (*Built, error) {
	if len(p.Rows) == 0 {
		return nil, errors.WrapOnelaError(errors.ErrEmptyBatchInsert, nil)
	}
	if len(p.Rows) > limits.MaxBatchRows {
		return nil, errors.Newf(errors.ErrLimitExceeded, "%d rows, max %d", len(p.Rows), limits.MaxBatchRows)
	}
	return b.insert(p.Configs, p.Rows, p.Columns, p.Returning)
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Builder) insert(cfg Configs, rows []map[string]any, columns, returning []string) (*Built, error) {
	table, err := b.table(cfg)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = sortedKeys(rows[0])
	}
	if len(columns) == 0 {
		return nil, errors.Newf(errors.ErrNoColumns, "table %s", cfg.TableName)
	}
	cols, err := b.columns(columns)
	if err != nil {
		return nil, err
	}
	ret, err := b.columns(returning)
	if err != nil {
		return nil, err
	}

	s := b.newStatement()
	values := make([][]string, len(rows))
	for i, row := range rows {
		phs := make([]string, len(columns))
		for j, key := range columns {
			phs[j] = s.bind(row[key])
		}
		values[i] = phs
	}

	return s.built(b.dialect.Insert(table, cols, values, ret))
}
