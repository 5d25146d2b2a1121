package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Condition is one WHERE predicate. Conditions are compiled in slice order;
// each condition after the first is joined with its Logic keyword.
//
// A condition whose Value is nil or "" is skipped. This makes optional
// filters cheap to express: leave the value empty and the predicate
// disappears.
//
// Operator is one of = > < <> >= <= (!= is read as <>), in, not in,
// % (ends with), x% (starts with), %% (contains), like, not like,
// between, not between, is, is not, regexp and ~. Unrecognized operators
// compile as =, they are not rejected.
type Condition struct {
	Key      string `json:"key"`
	Value    any    `json:"value"`
	Logic    string `json:"logic,omitempty"`
	Operator string `json:"operator,omitempty"`
	// Format splices Value into the SQL text instead of binding it. The
	// value must consist of identifier characters, digits, parentheses,
	// arithmetic operators and spaces.
	Format bool `json:"format,omitempty"`
}

// OrderBy sorts by one field. Direction must be exactly "ASC" or "DESC";
// any other direction drops the entry.
type OrderBy struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// OrderByList keeps sort keys in order. Besides the slice form it decodes
// the object form {"field": "ASC", ...}, preserving key order.
type OrderByList []OrderBy

func (l *OrderByList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []OrderBy
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out OrderByList
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var dir string
		if err := dec.Decode(&dir); err != nil {
			return fmt.Errorf("orderBy %v: %w", keyTok, err)
		}
		out = append(out, OrderBy{Field: fmt.Sprint(keyTok), Direction: dir})
	}
	*l = out
	return nil
}

// Configs carries the target table.
type Configs struct {
	TableName string `json:"tableName"`
}

// QueryParams describes a SELECT or COUNT.
type QueryParams struct {
	// Select lists result columns; empty selects t.*.
	Select []string `json:"select,omitempty"`
	// Keyword conditions are compiled before Where conditions.
	Keyword []Condition `json:"keyword,omitempty"`
	Where   []Condition `json:"where,omitempty"`
	OrderBy OrderByList `json:"orderBy,omitempty"`
	GroupBy []string    `json:"groupBy,omitempty"`
	// Limit is [offset, count]. A single element is a count with offset 0.
	Limit   []int   `json:"limit,omitempty"`
	Configs Configs `json:"configs"`
}

// Update operators.
const (
	OpReplace = "replace"
	OpPlus    = "plus"
	OpReduce  = "reduce"
)

// UpdateField is one SET item. With CaseField set it compiles to a CASE
// expression over CaseItems instead of a plain assignment.
type UpdateField struct {
	Key       string     `json:"key"`
	Value     any        `json:"value,omitempty"`
	Operator  string     `json:"operator,omitempty"`
	CaseField string     `json:"case_field,omitempty"`
	CaseItems []CaseItem `json:"case_item,omitempty"`
}

// CaseItem is one WHEN branch of a CASE update.
type CaseItem struct {
	CaseValue any    `json:"case_value"`
	Value     any    `json:"value"`
	Operator  string `json:"operator,omitempty"`
}

// UpdateParams describes an UPDATE.
type UpdateParams struct {
	Update  []UpdateField `json:"update"`
	Keyword []Condition   `json:"keyword,omitempty"`
	Where   []Condition   `json:"where,omitempty"`
	Configs Configs       `json:"configs"`
}

// DeleteParams describes a DELETE.
type DeleteParams struct {
	Keyword []Condition `json:"keyword,omitempty"`
	Where   []Condition `json:"where,omitempty"`
	Configs Configs     `json:"configs"`
}

// InsertParams describes a single-row INSERT. Columns defaults to the
// sorted keys of Row; a column missing from Row binds NULL.
type InsertParams struct {
	Row       map[string]any `json:"row"`
	Columns   []string       `json:"columns,omitempty"`
	Returning []string       `json:"returning,omitempty"`
	Configs   Configs        `json:"configs"`
}

// BatchInsertParams describes a multi-row INSERT. Columns defaults to the
// sorted keys of the first row.
type BatchInsertParams struct {
	Rows      []map[string]any `json:"rows"`
	Columns   []string         `json:"columns,omitempty"`
	Returning []string         `json:"returning,omitempty"`
	Configs   Configs          `json:"configs"`
}

// AggregateItem selects FUNCTION(Field) AS Name.
type AggregateItem struct {
	Function string `json:"function"`
	Field    string `json:"field"`
	Name     string `json:"name,omitempty"`
}

// AggregateParams describes an aggregate SELECT. Functions outside
// count, sum, max, min, avg and abs are dropped without error.
type AggregateParams struct {
	Aggregate []AggregateItem `json:"aggregate"`
	Keyword   []Condition     `json:"keyword,omitempty"`
	Where     []Condition     `json:"where,omitempty"`
	GroupBy   []string        `json:"groupBy,omitempty"`
	Configs   Configs         `json:"configs"`
}

// Built is a compiled statement. SQL and Params are the executable part;
// the other fields echo the compiled fragments.
type Built struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`

	Select  string `json:"select,omitempty"`
	Where   string `json:"where,omitempty"`
	GroupBy string `json:"groupBy,omitempty"`
	OrderBy string `json:"orderBy,omitempty"`
	Limit   string `json:"limit,omitempty"`
	Set     string `json:"set,omitempty"`

	// Dialect and ParamName let an executor bind Params without knowing
	// which builder produced them.
	Dialect   string `json:"dialect"`
	ParamName string `json:"-"`
}

type nullValue struct{}

func (nullValue) String() string { return "NULL" }

func (nullValue) MarshalJSON() ([]byte, error) { return []byte(`"NULL"`), nil }

// Null is the value of an is / is not condition. The strings "NULL" and
// "null" are accepted as well.
var Null = nullValue{}
