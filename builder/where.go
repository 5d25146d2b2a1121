package builder

// Condition constructors. Each returns an AND condition; chain .Or() to
// join it with OR instead.
//
// Example:
//
//	where := []builder.Condition{
//	    builder.Eq("status", 1),
//	    builder.Gte("age", 18),
//	    builder.In("role", "admin", "owner").Or(),
//	    builder.IsNull("deleted_at"),
//	}

// Eq creates an equality condition (=)
func Eq(key string, value any) Condition {
	return Condition{Key: key, Operator: "=", Value: value}
}

// Ne creates a not equal condition (<>)
func Ne(key string, value any) Condition {
	return Condition{Key: key, Operator: "<>", Value: value}
}

// Gt creates a greater than condition (>)
func Gt(key string, value any) Condition {
	return Condition{Key: key, Operator: ">", Value: value}
}

// Gte creates a greater than or equal condition (>=)
func Gte(key string, value any) Condition {
	return Condition{Key: key, Operator: ">=", Value: value}
}

// Lt creates a less than condition (<)
func Lt(key string, value any) Condition {
	return Condition{Key: key, Operator: "<", Value: value}
}

// Lte creates a less than or equal condition (<=)
func Lte(key string, value any) Condition {
	return Condition{Key: key, Operator: "<=", Value: value}
}

// Expr compares key with a raw SQL expression such as "price * 2".
func Expr(key, operator, expr string) Condition {
	return Condition{Key: key, Operator: operator, Value: expr, Format: true}
}

// In creates an IN condition. No values compiles to IN (NULL).
func In(key string, values ...any) Condition {
	if values == nil {
		values = []any{}
	}
	return Condition{Key: key, Operator: "in", Value: values}
}

// NotIn creates a NOT IN condition
func NotIn(key string, values ...any) Condition {
	if values == nil {
		values = []any{}
	}
	return Condition{Key: key, Operator: "not in", Value: values}
}

// Like creates a LIKE condition with a caller-supplied pattern
func Like(key, pattern string) Condition {
	return Condition{Key: key, Operator: "like", Value: pattern}
}

// NotLike creates a NOT LIKE condition
func NotLike(key, pattern string) Condition {
	return Condition{Key: key, Operator: "not like", Value: pattern}
}

// Contains matches %value%
func Contains(key, value string) Condition {
	return Condition{Key: key, Operator: "%%", Value: value}
}

// StartsWith matches value%
func StartsWith(key, value string) Condition {
	return Condition{Key: key, Operator: "x%", Value: value}
}

// EndsWith matches %value
func EndsWith(key, value string) Condition {
	return Condition{Key: key, Operator: "%", Value: value}
}

// Between creates a BETWEEN condition
func Between(key string, low, high any) Condition {
	return Condition{Key: key, Operator: "between", Value: []any{low, high}}
}

// NotBetween creates a NOT BETWEEN condition
func NotBetween(key string, low, high any) Condition {
	return Condition{Key: key, Operator: "not between", Value: []any{low, high}}
}

// IsNull creates an IS NULL condition
func IsNull(key string) Condition {
	return Condition{Key: key, Operator: "is", Value: Null}
}

// IsNotNull creates an IS NOT NULL condition
func IsNotNull(key string) Condition {
	return Condition{Key: key, Operator: "is not", Value: Null}
}

// Regexp creates a regular expression match. Not supported on SQL Server.
func Regexp(key, pattern string) Condition {
	return Condition{Key: key, Operator: "regexp", Value: pattern}
}

// Or returns a copy of c joined with OR.
func (c Condition) Or() Condition {
	c.Logic = "or"
	return c
}

// And returns a copy of c joined with AND.
func (c Condition) And() Condition {
	c.Logic = "and"
	return c
}

// Asc and Desc build ORDER BY entries.
func Asc(field string) OrderBy {
	return OrderBy{Field: field, Direction: "ASC"}
}

func Desc(field string) OrderBy {
	return OrderBy{Field: field, Direction: "DESC"}
}

// Set, Incr and Decr build UPDATE items.
func Set(key string, value any) UpdateField {
	return UpdateField{Key: key, Value: value, Operator: OpReplace}
}

func Incr(key string, by any) UpdateField {
	return UpdateField{Key: key, Value: by, Operator: OpPlus}
}

func Decr(key string, by any) UpdateField {
	return UpdateField{Key: key, Value: by, Operator: OpReduce}
}

// Case builds a CASE update of key switched on caseField.
func Case(key, caseField string, items ...CaseItem) UpdateField {
	return UpdateField{Key: key, CaseField: caseField, CaseItems: items}
}

// When builds a CASE branch; operator may be empty for replace.
func When(caseValue, value any, operator string) CaseItem {
	return CaseItem{CaseValue: caseValue, Value: value, Operator: operator}
}
