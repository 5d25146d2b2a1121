package dialect

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// SQLServerDialect implements the SQL Server dialect. The go-mssqldb driver
// binds by name, so placeholders are @<name><index> and Bind wraps every
// value in sql.Named.
type SQLServerDialect struct{}

func (d *SQLServerDialect) Name() string {
	return "sqlserver"
}

func (d *SQLServerDialect) Placeholder(index int, name string) string {
	if name == "" {
		name = DefaultParamName
	}
	return "@" + name + strconv.Itoa(index)
}

func (d *SQLServerDialect) QuoteIdentifier(name string) string {
	return quoteParts(name, "[", "]")
}

func (d *SQLServerDialect) QuoteString(value string) string {
	return "N" + quoteLiteral(value)
}

func (d *SQLServerDialect) TableAlias(table, alias string) string {
	return table + " AS " + alias
}

// Pagination binds (offset, limit). OFFSET is zero-based.
func (d *SQLServerDialect) Pagination(offset, limit, index int, name string) Pagination {
	return Pagination{
		SQL: fmt.Sprintf("OFFSET %s ROWS FETCH NEXT %s ROWS ONLY",
			d.Placeholder(index, name), d.Placeholder(index+1, name)),
		Params: []any{offset, limit},
		Next:   index + 2,
	}
}

// MaxParams: uma chamada RPC aceita no máximo 2100 parâmetros
func (d *SQLServerDialect) MaxParams() int {
	return 2100
}

func (d *SQLServerDialect) OffsetRequiresOrderBy() bool {
	return true
}

func (d *SQLServerDialect) Insert(table string, columns []string, rows [][]string, returning []string) string {
	output := ""
	if len(returning) > 0 {
		inserted := make([]string, len(returning))
		for i, col := range returning {
			inserted[i] = "INSERTED." + col
		}
		output = "OUTPUT " + strings.Join(inserted, ", ")
	}
	return valuesInsert(table, columns, rows, output, "")
}

func (d *SQLServerDialect) Regexp(column, placeholder string) (string, bool) {
	return "", false
}

func (d *SQLServerDialect) Bind(params []any, name string) []any {
	if name == "" {
		name = DefaultParamName
	}
	out := make([]any, len(params))
	for i, p := range params {
		if named, ok := p.(sql.NamedArg); ok {
			out[i] = named
			continue
		}
		out[i] = sql.Named(name+strconv.Itoa(i+1), p)
	}
	return out
}

func (d *SQLServerDialect) MapType(typ string, isNullable bool) string {
	typUpper := strings.ToUpper(typ)
	if !isLogicalType(typ) && isSQLType(typUpper) {
		switch {
		case strings.HasPrefix(typUpper, "TIMESTAMPTZ"):
			return "DATETIMEOFFSET"
		case strings.HasPrefix(typUpper, "TIMESTAMP"):
			return "DATETIME2"
		case strings.HasPrefix(typUpper, "BOOLEAN"), strings.HasPrefix(typUpper, "BOOL"):
			return "BIT"
		case strings.HasPrefix(typUpper, "JSON"), strings.HasPrefix(typUpper, "TEXT"):
			return "NVARCHAR(MAX)"
		case strings.HasPrefix(typUpper, "BYTEA"), strings.HasPrefix(typUpper, "BLOB"):
			return "VARBINARY(MAX)"
		case strings.HasPrefix(typUpper, "DOUBLE"):
			return "FLOAT"
		case strings.HasPrefix(typUpper, "UUID"):
			return "UNIQUEIDENTIFIER"
		}
		return typ
	}

	switch strings.ToLower(typ) {
	case "string":
		return "NVARCHAR(255)"
	case "int":
		return "INT"
	case "bigint":
		return "BIGINT"
	case "boolean", "bool":
		return "BIT"
	case "datetime":
		return "DATETIME2"
	case "float":
		return "FLOAT"
	case "decimal":
		return "DECIMAL(38, 10)"
	case "json":
		return "NVARCHAR(MAX)"
	case "bytes":
		return "VARBINARY(MAX)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(255)"
	}
}

func (d *SQLServerDialect) MapDefaultValue(value string) string {
	v := strings.ToLower(value)
	switch {
	case isAutoIncrement(v):
		return ""
	case isNow(v):
		return "SYSDATETIME()"
	case isUUIDDefault(v):
		return "NEWID()"
	default:
		return value
	}
}

func (d *SQLServerDialect) GetAutoIncrementKeyword() string {
	return "IDENTITY(1,1)"
}

func (d *SQLServerDialect) GetNowFunction() string {
	return "SYSDATETIME()"
}

func (d *SQLServerDialect) GetDriverName() string {
	return "sqlserver"
}
