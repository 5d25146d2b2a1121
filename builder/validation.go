package builder

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/identifier"
	"github.com/carlosnayan/onela-go/internal/limits"
)

// ValidationErrors collects every problem found in a request.
type ValidationErrors struct {
	Errors []ValidationError
}

func (ve *ValidationErrors) Error() string {
	var messages []string
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap exposes the underlying errors to errors.Is.
func (ve *ValidationErrors) Unwrap() []error {
	out := make([]error, len(ve.Errors))
	for i, e := range ve.Errors {
		out[i] = e.Err
	}
	return out
}

// ValidationError is one problem, tied to a field path such as where[2].key.
type ValidationError struct {
	Field string
	Err   error
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Err)
}

type validator struct {
	errs []ValidationError
}

func (v *validator) identifier(field, name string) {
	if _, err := identifier.Validate(name); err != nil {
		v.errs = append(v.errs, ValidationError{Field: field, Err: err})
	}
}

func (v *validator) conditions(field string, conds []Condition) {
	for i, c := range conds {
		// skipped by the compiler, so never part of the statement
		if isEmptyValue(c.Value) {
			continue
		}
		path := fmt.Sprintf("%s[%d]", field, i)
		v.identifier(path+".key", c.Key)
		switch normalizeOperator(c.Operator) {
		case "between", "not between":
			if len(toList(c.Value)) < 2 {
				v.errs = append(v.errs, ValidationError{Field: path + ".value", Err: errors.Newf(errors.ErrInvalidCondition, "needs two values")})
			}
		case "is", "is not":
			if !isNullValue(c.Value) {
				v.errs = append(v.errs, ValidationError{Field: path + ".value", Err: errors.Newf(errors.ErrInvalidCondition, "only NULL is accepted")})
			}
		default:
			if c.Format && !safeFormatValue.MatchString(fmt.Sprint(c.Value)) {
				v.errs = append(v.errs, ValidationError{Field: path + ".value", Err: errors.WrapOnelaError(errors.ErrUnsafeFormatValue, nil)})
			}
		}
	}
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationErrors{Errors: v.errs}
}

// Validate checks every identifier and condition of p and reports all
// problems at once. Build methods stop at the first one instead. Entries
// BuildSelect leaves out (empty condition values, ORDER BY with another
// direction than ASC or DESC) are not checked.
func (p QueryParams) Validate() error {
	var v validator
	v.identifier("configs.tableName", p.Configs.TableName)
	for i, s := range p.Select {
		v.identifier(fmt.Sprintf("select[%d]", i), s)
	}
	v.conditions("keyword", p.Keyword)
	v.conditions("where", p.Where)
	for i, g := range p.GroupBy {
		v.identifier(fmt.Sprintf("groupBy[%d]", i), g)
	}
	for i, o := range p.OrderBy {
		if o.Direction != "ASC" && o.Direction != "DESC" {
			continue
		}
		v.identifier(fmt.Sprintf("orderBy[%d]", i), o.Field)
	}
	return v.err()
}

// Validate checks every identifier and condition of p.
func (p UpdateParams) Validate() error {
	var v validator
	v.identifier("configs.tableName", p.Configs.TableName)
	for i, u := range p.Update {
		if skipUpdateItem(u) {
			continue
		}
		v.identifier(fmt.Sprintf("update[%d].key", i), u.Key)
		if u.CaseField != "" {
			v.identifier(fmt.Sprintf("update[%d].case_field", i), u.CaseField)
		}
	}
	v.conditions("keyword", p.Keyword)
	v.conditions("where", p.Where)
	return v.err()
}

// validate enforces the size limits BuildSelect applies before compiling.
func (p QueryParams) validate() error {
	if len(p.Select) > limits.MaxSelectFields {
		return errors.Newf(errors.ErrLimitExceeded, "%d select fields, max %d", len(p.Select), limits.MaxSelectFields)
	}
	return nil
}
