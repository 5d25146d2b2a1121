package dialect

import (
	"fmt"
	"strings"
)

// OracleDialect implements the Oracle dialect (12c and later).
type OracleDialect struct{}

func (d *OracleDialect) Name() string {
	return "oracle"
}

func (d *OracleDialect) Placeholder(index int, name string) string {
	return fmt.Sprintf(":%d", index)
}

func (d *OracleDialect) QuoteIdentifier(name string) string {
	return quoteParts(name, `"`, `"`)
}

func (d *OracleDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

// TableAlias omits AS, which Oracle rejects before a table alias.
func (d *OracleDialect) TableAlias(table, alias string) string {
	return table + " " + alias
}

func (d *OracleDialect) Pagination(offset, limit, index int, name string) Pagination {
	return Pagination{
		SQL:    fmt.Sprintf("OFFSET :%d ROWS FETCH NEXT :%d ROWS ONLY", index, index+1),
		Params: []any{offset, limit},
		Next:   index + 2,
	}
}

// MaxParams: limite de binds por instrução do OCI
func (d *OracleDialect) MaxParams() int {
	return 65535
}

func (d *OracleDialect) OffsetRequiresOrderBy() bool {
	return false
}

// Insert uses INSERT ALL for more than one row. RETURNING ... INTO needs
// out binds, so returning is ignored.
func (d *OracleDialect) Insert(table string, columns []string, rows [][]string, returning []string) string {
	if len(rows) <= 1 {
		return valuesInsert(table, columns, rows, "", "")
	}
	cols := strings.Join(columns, ", ")
	var sb strings.Builder
	sb.WriteString("INSERT ALL")
	for _, row := range rows {
		sb.WriteString(" INTO ")
		sb.WriteString(table)
		sb.WriteString(" (")
		sb.WriteString(cols)
		sb.WriteString(") VALUES (")
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" SELECT 1 FROM DUAL")
	return sb.String()
}

func (d *OracleDialect) Regexp(column, placeholder string) (string, bool) {
	return fmt.Sprintf("REGEXP_LIKE(%s, %s)", column, placeholder), true
}

func (d *OracleDialect) Bind(params []any, name string) []any {
	return params
}

func (d *OracleDialect) MapType(typ string, isNullable bool) string {
	typUpper := strings.ToUpper(typ)
	if !isLogicalType(typ) && isSQLType(typUpper) {
		switch {
		case strings.HasPrefix(typUpper, "TIMESTAMPTZ"):
			return "TIMESTAMP WITH TIME ZONE"
		case strings.HasPrefix(typUpper, "TEXT"), strings.HasPrefix(typUpper, "JSON"):
			return "CLOB"
		case strings.HasPrefix(typUpper, "BYTEA"):
			return "BLOB"
		case strings.HasPrefix(typUpper, "BOOLEAN"), strings.HasPrefix(typUpper, "BOOL"):
			return "NUMBER(1)"
		case strings.HasPrefix(typUpper, "VARCHAR("):
			return "VARCHAR2" + typ[len("VARCHAR"):]
		case strings.HasPrefix(typUpper, "UUID"):
			return "VARCHAR2(36)"
		}
		return typ
	}

	switch strings.ToLower(typ) {
	case "string":
		return "VARCHAR2(255)"
	case "int":
		return "NUMBER(10)"
	case "bigint":
		return "NUMBER(19)"
	case "boolean", "bool":
		return "NUMBER(1)"
	case "datetime":
		return "TIMESTAMP"
	case "float":
		return "BINARY_DOUBLE"
	case "decimal":
		return "NUMBER(38, 10)"
	case "json":
		return "CLOB"
	case "bytes":
		return "BLOB"
	case "uuid":
		return "VARCHAR2(36)"
	default:
		return "VARCHAR2(255)"
	}
}

func (d *OracleDialect) MapDefaultValue(value string) string {
	v := strings.ToLower(value)
	switch {
	case isAutoIncrement(v):
		return ""
	case isNow(v):
		return "SYSTIMESTAMP"
	case isUUIDDefault(v):
		return "SYS_GUID()"
	default:
		return value
	}
}

func (d *OracleDialect) GetAutoIncrementKeyword() string {
	return "GENERATED BY DEFAULT AS IDENTITY"
}

func (d *OracleDialect) GetNowFunction() string {
	return "SYSTIMESTAMP"
}

// GetDriverName returns the name registered by pure-Go Oracle drivers.
// None is linked into the CLI; applications register their own.
func (d *OracleDialect) GetDriverName() string {
	return "oracle"
}
