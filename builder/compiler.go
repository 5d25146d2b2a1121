package builder

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/limits"
)

// safeFormatValue is the only shape a Format value may take.
var safeFormatValue = regexp.MustCompile(`^[A-Za-z0-9_().+\-*/ ]+$`)

var comparisonOps = map[string]string{
	"=":  "=",
	">":  ">",
	"<":  "<",
	"<>": "<>",
	"!=": "<>",
	">=": ">=",
	"<=": "<=",
}

// Compile compiles conds into a WHERE body and its parameters, numbering
// placeholders from 1. No surviving condition yields "1=1".
func Compile(d dialect.Dialect, conds []Condition) (string, []any, error) {
	s := NewWithDialect(d).newStatement()
	where, err := s.where(conds)
	if err != nil {
		return "", nil, err
	}
	return where, s.params, nil
}

// HasEffectiveConditions reports whether any condition would survive the
// empty-value skip rule.
func HasEffectiveConditions(lists ...[]Condition) bool {
	for _, conds := range lists {
		for _, c := range conds {
			if !isEmptyValue(c.Value) {
				return true
			}
		}
	}
	return false
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map:
		return rv.IsNil()
	case reflect.Slice:
		// nil slices are absent values; an empty non-nil slice is an
		// explicit empty list
		return rv.IsNil()
	}
	return false
}

func isNullValue(v any) bool {
	if _, ok := v.(nullValue); ok {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.EqualFold(s, "null")
	}
	return false
}

// toList spreads slices and arrays. []byte and scalars are single values.
func toList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	if _, ok := v.([]byte); ok {
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func normalizeOperator(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	op = strings.Join(strings.Fields(op), " ")
	if op == "" {
		return "="
	}
	return op
}

// where compiles conds in order, binding values through s.
func (s *statement) where(conds []Condition) (string, error) {
	if len(conds) > limits.MaxQueryConditions {
		return "", errors.Newf(errors.ErrLimitExceeded, "%d conditions, max %d", len(conds), limits.MaxQueryConditions)
	}

	var sb strings.Builder
	n := 0
	for _, c := range conds {
		if isEmptyValue(c.Value) {
			continue
		}
		frag, err := s.condition(c)
		if err != nil {
			return "", err
		}
		if n > 0 {
			if strings.EqualFold(strings.TrimSpace(c.Logic), "or") {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		sb.WriteString(frag)
		n++
	}
	if n == 0 {
		return "1=1", nil
	}
	return sb.String(), nil
}

func (s *statement) condition(c Condition) (string, error) {
	col, err := s.b.column(c.Key)
	if err != nil {
		return "", err
	}

	op := normalizeOperator(c.Operator)
	switch op {
	case "in", "not in":
		values := toList(c.Value)
		keyword := strings.ToUpper(op)
		if len(values) == 0 {
			return fmt.Sprintf("%s %s (NULL)", col, keyword), nil
		}
		if len(values) > limits.MaxInListValues {
			return "", errors.Newf(errors.ErrLimitExceeded, "%s: %d values, max %d", c.Key, len(values), limits.MaxInListValues)
		}
		phs := make([]string, len(values))
		for i, v := range values {
			phs[i] = s.bind(v)
		}
		return fmt.Sprintf("%s %s (%s)", col, keyword, strings.Join(phs, ", ")), nil

	case "%", "x%", "%%":
		v := fmt.Sprint(c.Value)
		switch op {
		case "%":
			v = "%" + v
		case "x%":
			v = v + "%"
		default:
			v = "%" + v + "%"
		}
		return fmt.Sprintf("%s LIKE %s", col, s.bind(v)), nil

	case "like", "not like":
		return fmt.Sprintf("%s %s %s", col, strings.ToUpper(op), s.bind(c.Value)), nil

	case "between", "not between":
		values := toList(c.Value)
		if len(values) < 2 {
			return "", errors.Newf(errors.ErrInvalidCondition, "%s: %s needs two values", c.Key, op)
		}
		low := s.bind(values[0])
		high := s.bind(values[1])
		return fmt.Sprintf("%s %s %s AND %s", col, strings.ToUpper(op), low, high), nil

	case "is", "is not":
		if !isNullValue(c.Value) {
			return "", errors.Newf(errors.ErrInvalidCondition, "%s: %s only accepts NULL", c.Key, op)
		}
		return fmt.Sprintf("%s %s NULL", col, strings.ToUpper(op)), nil

	case "regexp", "~":
		if _, ok := s.b.dialect.Regexp(col, ""); !ok {
			return "", errors.Newf(errors.ErrInvalidCondition, "%s: regexp is not supported by %s", c.Key, s.b.dialect.Name())
		}
		frag, _ := s.b.dialect.Regexp(col, s.bind(c.Value))
		return frag, nil
	}

	sqlOp, ok := comparisonOps[op]
	if !ok {
		sqlOp = "="
	}
	if c.Format {
		raw := fmt.Sprint(c.Value)
		if !safeFormatValue.MatchString(raw) {
			return "", errors.Newf(errors.ErrUnsafeFormatValue, "%s: %q", c.Key, raw)
		}
		return fmt.Sprintf("%s %s %s", col, sqlOp, raw), nil
	}
	return fmt.Sprintf("%s %s %s", col, sqlOp, s.bind(c.Value)), nil
}
