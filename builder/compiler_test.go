package builder

import (
	"errors"
	"testing"

	"github.com/carlosnayan/onela-go/internal/dialect"
	testutil "github.com/carlosnayan/onela-go/internal/testing"
)

func TestCompile_Tautology(t *testing.T) {
	for _, name := range dialect.Names() {
		sql, params, err := Compile(dialect.MustNew(name), nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if sql != "1=1" {
			t.Errorf("%s Compile(nil) = %s, want 1=1", name, sql)
		}
		if len(params) != 0 {
			t.Errorf("%s Compile(nil) params = %v, want none", name, params)
		}
	}
}

func TestCompile_SkipEmpty(t *testing.T) {
	d := dialect.MustNew("postgresql")
	base := []Condition{
		{Key: "status", Value: 1},
		{Key: "age", Operator: ">=", Value: 18},
	}
	withEmpty := []Condition{
		{Key: "name", Value: ""},
		{Key: "status", Value: 1},
		{Key: "email", Value: nil},
		{Key: "age", Operator: ">=", Value: 18},
		{Key: "tags", Operator: "in", Value: []string(nil)},
		{Key: "deleted_at", Operator: "is", Value: nil},
	}

	wantSQL, wantParams, err := Compile(d, base)
	if err != nil {
		t.Fatal(err)
	}
	gotSQL, gotParams, err := Compile(d, withEmpty)
	if err != nil {
		t.Fatal(err)
	}
	if gotSQL != wantSQL {
		t.Errorf("sql = %s, want %s", gotSQL, wantSQL)
	}
	if diff := testutil.Diff(gotParams, wantParams); diff != "" {
		t.Error(diff)
	}
	if wantSQL != "status = $1 AND age >= $2" {
		t.Errorf("sql = %s", wantSQL)
	}
}

func TestCompile_Operators(t *testing.T) {
	tests := []struct {
		name   string
		conds  []Condition
		sql    string
		params []any
	}{
		{
			name:   "default operator",
			conds:  []Condition{{Key: "id", Value: 7}},
			sql:    "id = ?",
			params: []any{7},
		},
		{
			name:   "comparisons",
			conds:  []Condition{Gt("a", 1), Lt("b", 2), Gte("c", 3), Lte("d", 4), Ne("e", 5)},
			sql:    "a > ? AND b < ? AND c >= ? AND d <= ? AND e <> ?",
			params: []any{1, 2, 3, 4, 5},
		},
		{
			name:   "bang equals",
			conds:  []Condition{{Key: "a", Operator: "!=", Value: 1}},
			sql:    "a <> ?",
			params: []any{1},
		},
		{
			name:   "unknown operator falls back to equals",
			conds:  []Condition{{Key: "a", Operator: "===", Value: 1}},
			sql:    "a = ?",
			params: []any{1},
		},
		{
			name:   "or logic",
			conds:  []Condition{Eq("a", 1), Eq("b", 2).Or(), {Key: "c", Value: 3, Logic: "AND"}},
			sql:    "a = ? OR b = ? AND c = ?",
			params: []any{1, 2, 3},
		},
		{
			name:   "logic of first condition is ignored",
			conds:  []Condition{Eq("a", 1).Or()},
			sql:    "a = ?",
			params: []any{1},
		},
		{
			name:   "in",
			conds:  []Condition{In("id", 1, 2, 3)},
			sql:    "id IN (?, ?, ?)",
			params: []any{1, 2, 3},
		},
		{
			name:   "in typed slice",
			conds:  []Condition{{Key: "id", Operator: "IN", Value: []int{4, 5}}},
			sql:    "id IN (?, ?)",
			params: []any{4, 5},
		},
		{
			name:   "in scalar",
			conds:  []Condition{{Key: "id", Operator: "in", Value: 9}},
			sql:    "id IN (?)",
			params: []any{9},
		},
		{
			name:   "in empty",
			conds:  []Condition{{Key: "id", Operator: "in", Value: []any{}}},
			sql:    "id IN (NULL)",
			params: nil,
		},
		{
			name:   "not in empty",
			conds:  []Condition{NotIn("id")},
			sql:    "id NOT IN (NULL)",
			params: nil,
		},
		{
			name:   "left fuzzy",
			conds:  []Condition{EndsWith("name", "son")},
			sql:    "name LIKE ?",
			params: []any{"%son"},
		},
		{
			name:   "right fuzzy",
			conds:  []Condition{StartsWith("name", "jo")},
			sql:    "name LIKE ?",
			params: []any{"jo%"},
		},
		{
			name:   "full fuzzy",
			conds:  []Condition{Contains("name", "oh")},
			sql:    "name LIKE ?",
			params: []any{"%oh%"},
		},
		{
			name:   "like and not like",
			conds:  []Condition{Like("a", "x_y"), NotLike("b", "z%")},
			sql:    "a LIKE ? AND b NOT LIKE ?",
			params: []any{"x_y", "z%"},
		},
		{
			name:   "between",
			conds:  []Condition{Between("age", 18, 30), {Key: "score", Operator: "not between", Value: []int{1, 2, 3}}},
			sql:    "age BETWEEN ? AND ? AND score NOT BETWEEN ? AND ?",
			params: []any{18, 30, 1, 2},
		},
		{
			name:   "is null",
			conds:  []Condition{IsNull("deleted_at"), IsNotNull("email"), {Key: "x", Operator: "is", Value: "null"}},
			sql:    "deleted_at IS NULL AND email IS NOT NULL AND x IS NULL",
			params: nil,
		},
		{
			name:   "format",
			conds:  []Condition{Expr("total", ">", "price * 2"), {Key: "qty", Value: "stock - 1", Format: true}},
			sql:    "total > price * 2 AND qty = stock - 1",
			params: nil,
		},
		{
			name:   "regexp",
			conds:  []Condition{Regexp("code", "^A")},
			sql:    "code REGEXP ?",
			params: []any{"^A"},
		},
		{
			name:   "qualified key",
			conds:  []Condition{Eq("t.id", 1)},
			sql:    "t.id = ?",
			params: []any{1},
		},
	}

	d := dialect.MustNew("mysql")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := Compile(d, tt.conds)
			if err != nil {
				t.Fatalf("Compile error: %v", err)
			}
			if sql != tt.sql {
				t.Errorf("sql = %s, want %s", sql, tt.sql)
			}
			if diff := testutil.Diff(params, tt.params); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		conds   []Condition
		want    error
	}{
		{"bad key", "mysql", []Condition{Eq("id; DROP TABLE x", 1)}, ErrInvalidIdentifier},
		{"key with space", "mysql", []Condition{{Key: "a b", Value: 1}}, ErrInvalidIdentifier},
		{"unsafe format", "mysql", []Condition{{Key: "a", Value: "1; DROP TABLE x", Format: true}}, ErrUnsafeFormatValue},
		{"quote in format", "mysql", []Condition{{Key: "a", Value: "'x'", Format: true}}, ErrUnsafeFormatValue},
		{"between one value", "mysql", []Condition{{Key: "a", Operator: "between", Value: []any{1}}}, ErrInvalidCondition},
		{"between scalar", "mysql", []Condition{{Key: "a", Operator: "between", Value: 1}}, ErrInvalidCondition},
		{"is with value", "mysql", []Condition{{Key: "a", Operator: "is", Value: 1}}, ErrInvalidCondition},
		{"regexp on sqlserver", "sqlserver", []Condition{Regexp("a", "x")}, ErrInvalidCondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compile(dialect.MustNew(tt.dialect), tt.conds)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_TooManyConditions(t *testing.T) {
	conds := make([]Condition, 1001)
	for i := range conds {
		conds[i] = Eq("id", i)
	}
	_, _, err := Compile(dialect.MustNew("mysql"), conds)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("error = %v, want ErrLimitExceeded", err)
	}
}

func TestCompile_Placeholders(t *testing.T) {
	conds := []Condition{Eq("a", 1), In("b", 2, 3), Between("c", 4, 5)}
	tests := []struct {
		dialect string
		sql     string
	}{
		{"postgresql", "a = $1 AND b IN ($2, $3) AND c BETWEEN $4 AND $5"},
		{"sqlserver", "a = @p1 AND b IN (@p2, @p3) AND c BETWEEN @p4 AND @p5"},
		{"oracle", "a = :1 AND b IN (:2, :3) AND c BETWEEN :4 AND :5"},
		{"sqlite", "a = ? AND b IN (?, ?) AND c BETWEEN ? AND ?"},
	}
	for _, tt := range tests {
		sql, params, err := Compile(dialect.MustNew(tt.dialect), conds)
		if err != nil {
			t.Fatalf("%s: %v", tt.dialect, err)
		}
		if sql != tt.sql {
			t.Errorf("%s sql = %s, want %s", tt.dialect, sql, tt.sql)
		}
		if diff := testutil.Diff(params, []any{1, 2, 3, 4, 5}); diff != "" {
			t.Errorf("%s params: %s", tt.dialect, diff)
		}
	}
}

func TestHasEffectiveConditions(t *testing.T) {
	if HasEffectiveConditions(nil) {
		t.Error("HasEffectiveConditions(nil) = true")
	}
	if HasEffectiveConditions([]Condition{{Key: "a", Value: ""}}, []Condition{{Key: "b"}}) {
		t.Error("HasEffectiveConditions(empty values) = true")
	}
	if !HasEffectiveConditions(nil, []Condition{Eq("a", 0)}) {
		t.Error("HasEffectiveConditions(a = 0) = false")
	}
	if !HasEffectiveConditions([]Condition{IsNull("a")}) {
		t.Error("HasEffectiveConditions(a IS NULL) = false")
	}
}
