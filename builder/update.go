package builder

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/limits"
)

// BuildUpdate compiles UPDATE <table> SET <set> WHERE <where>.
//
// Items whose Value is "" are skipped; nil, 0 and false are assigned.
// CASE items with no branches are skipped. When nothing remains to set
// the call fails with ErrNoFieldsToUpdate.
func (b *Builder) BuildUpdate(p UpdateParams) (*Built, error) {
	if len(p.Update) > limits.MaxUpdateFields {
		return nil, errors.Newf(errors.ErrLimitExceeded, "%d update fields, max %d", len(p.Update), limits.MaxUpdateFields)
	}
	table, err := b.table(p.Configs)
	if err != nil {
		return nil, err
	}

	s := b.newStatement()
	var sets []string
	for _, item := range p.Update {
		if skipUpdateItem(item) {
			continue
		}
		var frag string
		var err error
		if isCaseItem(item) {
			frag, err = s.caseAssignment(item)
		} else {
			frag, err = s.assignment(item)
		}
		if err != nil {
			return nil, err
		}
		sets = append(sets, frag)
	}
	if len(sets) == 0 {
		return nil, errors.WrapOnelaError(errors.ErrNoFieldsToUpdate, fmt.Errorf("table %s", p.Configs.TableName))
	}
	set := strings.Join(sets, ", ")

	where, err := s.where(mergeConditions(p.Keyword, p.Where))
	if err != nil {
		return nil, err
	}

	out, err := s.built(fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, set, where))
	if err != nil {
		return nil, err
	}
	out.Set = set
	out.Where = where
	return out, nil
}

func isCaseItem(item UpdateField) bool {
	return item.CaseField != "" || item.CaseItems != nil
}

// skipUpdateItem reports whether BuildUpdate leaves item out of SET: a
// CASE item without branches, or a plain item whose value is "".
func skipUpdateItem(item UpdateField) bool {
	if isCaseItem(item) {
		return len(item.CaseItems) == 0
	}
	str, ok := item.Value.(string)
	return ok && str == ""
}

// arithmetic renders the right-hand side of an assignment to col.
func arithmetic(col, operator, ph string) string {
	switch strings.ToLower(strings.TrimSpace(operator)) {
	case OpPlus:
		return col + " + " + ph
	case OpReduce:
		return col + " - " + ph
	default:
		return ph
	}
}

func (s *statement) assignment(item UpdateField) (string, error) {
	col, err := s.b.column(item.Key)
	if err != nil {
		return "", err
	}
	return col + " = " + arithmetic(col, item.Operator, s.bind(item.Value)), nil
}

// caseAssignment compiles
//
//	key = (CASE case_field WHEN ? THEN <branch> ... ELSE key END)
//
// Every branch binds its case value and its result. ELSE key leaves rows
// matching no branch unchanged.
func (s *statement) caseAssignment(item UpdateField) (string, error) {
	if len(item.CaseItems) > limits.MaxCaseItems {
		return "", errors.Newf(errors.ErrLimitExceeded, "%s: %d case items, max %d", item.Key, len(item.CaseItems), limits.MaxCaseItems)
	}
	col, err := s.b.column(item.Key)
	if err != nil {
		return "", err
	}
	caseCol, err := s.b.column(item.CaseField)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(col)
	sb.WriteString(" = (CASE ")
	sb.WriteString(caseCol)
	for _, ci := range item.CaseItems {
		when := s.bind(ci.CaseValue)
		then := arithmetic(col, ci.Operator, s.bind(ci.Value))
		sb.WriteString(" WHEN ")
		sb.WriteString(when)
		sb.WriteString(" THEN ")
		sb.WriteString(then)
	}
	sb.WriteString(" ELSE ")
	sb.WriteString(col)
	sb.WriteString(" END)")
	return sb.String(), nil
}
