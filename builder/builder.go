// Package builder compiles declarative query descriptions into
// parameterized SQL for a target dialect.
//
// A Builder is immutable once created and safe for concurrent use. Every
// Build call numbers its placeholders from 1 and returns a fresh *Built.
package builder

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/identifier"
	"github.com/carlosnayan/onela-go/internal/limits"
)

// tableAlias is the alias every SELECT gives its table.
const tableAlias = "t"

// Builder compiles statements for one dialect.
type Builder struct {
	dialect      dialect.Dialect
	quoteColumns bool
	paramName    string
}

// Option configures a Builder.
type Option func(*Builder)

// WithQuotedColumns quotes column identifiers with the dialect's quote
// characters. Table names are always quoted.
func WithQuotedColumns() Option {
	return func(b *Builder) {
		b.quoteColumns = true
	}
}

// WithParamName sets the prefix of named parameters (SQL Server only).
func WithParamName(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.paramName = name
		}
	}
}

// New creates a Builder for the named dialect or alias.
func New(dialectName string, opts ...Option) (*Builder, error) {
	d, err := dialect.New(dialectName)
	if err != nil {
		return nil, err
	}
	return NewWithDialect(d, opts...), nil
}

// NewWithDialect creates a Builder for d.
func NewWithDialect(d dialect.Dialect, opts ...Option) *Builder {
	b := &Builder{
		dialect:   d,
		paramName: dialect.DefaultParamName,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dialect returns the builder's dialect.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

// ParamName returns the named-parameter prefix.
func (b *Builder) ParamName() string {
	return b.paramName
}

// statement holds the per-call placeholder counter and bound values.
type statement struct {
	b      *Builder
	index  int
	params []any
}

func (b *Builder) newStatement() *statement {
	return &statement{b: b, index: 1}
}

// bind appends v and returns its placeholder.
func (s *statement) bind(v any) string {
	ph := s.b.dialect.Placeholder(s.index, s.b.paramName)
	s.index++
	s.params = append(s.params, v)
	return ph
}

func (s *statement) paginate(offset, count int) string {
	p := s.b.dialect.Pagination(offset, count, s.index, s.b.paramName)
	s.index = p.Next
	s.params = append(s.params, p.Params...)
	return p.SQL
}

// built fails with ErrLimitExceeded when the statement binds more
// parameters than the dialect accepts in one call.
func (s *statement) built(sql string) (*Built, error) {
	if limit := s.b.dialect.MaxParams(); len(s.params) > limit {
		return nil, errors.Newf(errors.ErrLimitExceeded, "%d parameters, %s accepts at most %d", len(s.params), s.b.dialect.Name(), limit)
	}
	params := s.params
	if params == nil {
		params = []any{}
	}
	return &Built{
		SQL:       sql,
		Params:    params,
		Dialect:   s.b.dialect.Name(),
		ParamName: s.b.paramName,
	}, nil
}

// column validates name and renders it per the quoting option.
func (b *Builder) column(name string) (string, error) {
	if _, err := identifier.Validate(name); err != nil {
		return "", err
	}
	if b.quoteColumns {
		return b.dialect.QuoteIdentifier(name), nil
	}
	return name, nil
}

func (b *Builder) columns(names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		col, err := b.column(name)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}
	return out, nil
}

func (b *Builder) table(cfg Configs) (string, error) {
	if cfg.TableName == "" {
		return "", errors.Newf(errors.ErrInvalidIdentifier, "table name is required")
	}
	if _, err := identifier.Validate(cfg.TableName); err != nil {
		return "", err
	}
	return b.dialect.QuoteIdentifier(cfg.TableName), nil
}

func (b *Builder) groupBy(fields []string) (string, error) {
	if len(fields) > limits.MaxGroupByFields {
		return "", errors.Newf(errors.ErrLimitExceeded, "%d group by fields, max %d", len(fields), limits.MaxGroupByFields)
	}
	cols, err := b.columns(fields)
	if err != nil {
		return "", err
	}
	return strings.Join(cols, ", "), nil
}

// orderBy keeps entries whose direction is exactly ASC or DESC.
func (b *Builder) orderBy(list OrderByList) (string, error) {
	if len(list) > limits.MaxOrderByFields {
		return "", errors.Newf(errors.ErrLimitExceeded, "%d order by fields, max %d", len(list), limits.MaxOrderByFields)
	}
	var parts []string
	for _, ob := range list {
		if ob.Direction != "ASC" && ob.Direction != "DESC" {
			continue
		}
		col, err := b.column(ob.Field)
		if err != nil {
			return "", err
		}
		parts = append(parts, col+" "+ob.Direction)
	}
	return strings.Join(parts, ", "), nil
}

// limitValues turns [offset, count] or [count] into (offset, count, ok).
func limitValues(limit []int) (int, int, bool, error) {
	var offset, count int
	switch len(limit) {
	case 0:
		return 0, 0, false, nil
	case 1:
		count = limit[0]
	default:
		offset, count = limit[0], limit[1]
	}
	if offset < 0 || count < 0 {
		return 0, 0, false, errors.Newf(errors.ErrInvalidCondition, "limit %v: negative value", limit)
	}
	return offset, count, true, nil
}

func mergeConditions(keyword, where []Condition) []Condition {
	if len(keyword) == 0 {
		return where
	}
	if len(where) == 0 {
		return keyword
	}
	out := make([]Condition, 0, len(keyword)+len(where))
	out = append(out, keyword...)
	return append(out, where...)
}

// BuildSelect compiles
//
//	SELECT <select> FROM <table> AS t WHERE <where> [GROUP BY] [ORDER BY] [pagination]
func (b *Builder) BuildSelect(p QueryParams) (*Built, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	table, err := b.table(p.Configs)
	if err != nil {
		return nil, err
	}

	sel := tableAlias + ".*"
	if len(p.Select) > 0 {
		cols, err := b.columns(p.Select)
		if err != nil {
			return nil, err
		}
		sel = strings.Join(cols, ", ")
	}

	groupBy, err := b.groupBy(p.GroupBy)
	if err != nil {
		return nil, err
	}
	orderBy, err := b.orderBy(p.OrderBy)
	if err != nil {
		return nil, err
	}
	offset, count, paginate, err := limitValues(p.Limit)
	if err != nil {
		return nil, err
	}

	s := b.newStatement()
	where, err := s.where(mergeConditions(p.Keyword, p.Where))
	if err != nil {
		return nil, err
	}

	parts := []string{
		"SELECT " + sel,
		"FROM " + b.dialect.TableAlias(table, tableAlias),
		"WHERE " + where,
	}
	if groupBy != "" {
		parts = append(parts, "GROUP BY "+groupBy)
	}
	if orderBy != "" {
		parts = append(parts, "ORDER BY "+orderBy)
	} else if paginate && b.dialect.OffsetRequiresOrderBy() {
		parts = append(parts, "ORDER BY (SELECT NULL)")
	}
	var limit string
	if paginate {
		limit = s.paginate(offset, count)
		parts = append(parts, limit)
	}

	out, err := s.built(strings.Join(parts, " "))
	if err != nil {
		return nil, err
	}
	out.Select = sel
	out.Where = where
	out.GroupBy = groupBy
	out.OrderBy = orderBy
	out.Limit = limit
	return out, nil
}

// BuildCount compiles SELECT COUNT(*) AS total over the same filters as
// BuildSelect. Select, ordering and pagination are ignored.
func (b *Builder) BuildCount(p QueryParams) (*Built, error) {
	table, err := b.table(p.Configs)
	if err != nil {
		return nil, err
	}

	s := b.newStatement()
	where, err := s.where(mergeConditions(p.Keyword, p.Where))
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT COUNT(*) AS total FROM %s WHERE %s",
		b.dialect.TableAlias(table, tableAlias), where)
	out, err := s.built(sql)
	if err != nil {
		return nil, err
	}
	out.Select = "COUNT(*) AS total"
	out.Where = where
	return out, nil
}

// BuildDelete compiles DELETE FROM <table> WHERE <where>. An empty filter
// compiles to WHERE 1=1; refusing unfiltered deletes is the caller's job.
func (b *Builder) BuildDelete(p DeleteParams) (*Built, error) {
	table, err := b.table(p.Configs)
	if err != nil {
		return nil, err
	}

	s := b.newStatement()
	where, err := s.where(mergeConditions(p.Keyword, p.Where))
	if err != nil {
		return nil, err
	}

	out, err := s.built(fmt.Sprintf("DELETE FROM %s WHERE %s", table, where))
	if err != nil {
		return nil, err
	}
	out.Where = where
	return out, nil
}
