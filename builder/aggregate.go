package builder

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/onela-go/internal/errors"
)

// aggregateFuncs is the whitelist of aggregate functions.
var aggregateFuncs = map[string]string{
	"count": "COUNT",
	"sum":   "SUM",
	"max":   "MAX",
	"min":   "MIN",
	"avg":   "AVG",
	"abs":   "ABS",
}

// aggregateName derives an alias when the item has none.
func aggregateName(fn, field string) string {
	if field == "*" {
		return fn
	}
	return fn + "_" + strings.ReplaceAll(field, ".", "_")
}

// BuildAggregate compiles
//
//	SELECT [group by fields,] FN(field) AS name, ... FROM <table> AS t WHERE <where> [GROUP BY]
//
// Items whose function is not in the whitelist are dropped silently. If
// none remain the call fails with ErrEmptyAggregate.
func (b *Builder) BuildAggregate(p AggregateParams) (*Built, error) {
	table, err := b.table(p.Configs)
	if err != nil {
		return nil, err
	}
	groupBy, err := b.groupBy(p.GroupBy)
	if err != nil {
		return nil, err
	}

	var selects []string
	if groupBy != "" {
		selects = append(selects, groupBy)
	}
	n := 0
	for _, item := range p.Aggregate {
		fn := strings.ToLower(strings.TrimSpace(item.Function))
		sqlFn, ok := aggregateFuncs[fn]
		if !ok {
			continue
		}
		field := item.Field
		if field == "" {
			field = "*"
		}
		col, err := b.column(field)
		if err != nil {
			return nil, err
		}
		name := item.Name
		if name == "" {
			name = aggregateName(fn, field)
		}
		alias, err := b.column(name)
		if err != nil {
			return nil, err
		}
		selects = append(selects, fmt.Sprintf("%s(%s) AS %s", sqlFn, col, alias))
		n++
	}
	if n == 0 {
		return nil, errors.Newf(errors.ErrEmptyAggregate, "table %s", p.Configs.TableName)
	}
	sel := strings.Join(selects, ", ")

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

	out, err := s.built(strings.Join(parts, " "))
	if err != nil {
		return nil, err
	}
	out.Select = sel
	out.Where = where
	out.GroupBy = groupBy
	return out, nil
}
