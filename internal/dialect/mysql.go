package dialect

import (
	"fmt"
	"strings"
)

// MySQLDialect implements the MySQL dialect. MariaDB, TiDB, OceanBase and
// PolarDB resolve to it.
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) Placeholder(index int, name string) string {
	return "?"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quoteParts(name, "`", "`")
}

func (d *MySQLDialect) QuoteString(value string) string {
	// Escapar barras antes das aspas
	return quoteLiteral(strings.ReplaceAll(value, "\\", "\\\\"))
}

func (d *MySQLDialect) TableAlias(table, alias string) string {
	return table + " AS " + alias
}

// Pagination emits LIMIT ?, ? and binds (offset, limit), the order the
// clause reads.
func (d *MySQLDialect) Pagination(offset, limit, index int, name string) Pagination {
	return Pagination{
		SQL:    "LIMIT ?, ?",
		Params: []any{offset, limit},
		Next:   index + 2,
	}
}

// MaxParams: o protocolo de prepared statements usa uint16
func (d *MySQLDialect) MaxParams() int {
	return 65535
}

func (d *MySQLDialect) OffsetRequiresOrderBy() bool {
	return false
}

func (d *MySQLDialect) Insert(table string, columns []string, rows [][]string, returning []string) string {
	// MySQL has no RETURNING; LastInsertId covers the common case.
	return valuesInsert(table, columns, rows, "", "")
}

func (d *MySQLDialect) Regexp(column, placeholder string) (string, bool) {
	return fmt.Sprintf("%s REGEXP %s", column, placeholder), true
}

func (d *MySQLDialect) Bind(params []any, name string) []any {
	return params
}

func (d *MySQLDialect) MapType(typ string, isNullable bool) string {
	typUpper := strings.ToUpper(typ)

	// Tipos SQL nativos são adaptados para MySQL quando necessário
	if !isLogicalType(typ) && isSQLType(typUpper) {
		switch {
		case strings.HasPrefix(typUpper, "BYTEA"):
			return "BLOB"
		case strings.HasPrefix(typUpper, "JSONB"):
			return "JSON"
		case strings.HasPrefix(typUpper, "TIMESTAMPTZ"):
			return "TIMESTAMP"
		case strings.HasPrefix(typUpper, "DOUBLE PRECISION"):
			return "DOUBLE"
		case strings.HasPrefix(typUpper, "BOOLEAN"), strings.HasPrefix(typUpper, "BOOL"):
			return "TINYINT(1)"
		case strings.HasPrefix(typUpper, "INET"), strings.HasPrefix(typUpper, "CIDR"),
			strings.HasPrefix(typUpper, "MONEY"), strings.HasPrefix(typUpper, "VARBIT"):
			return "VARCHAR(255)"
		}
		return typ
	}

	switch strings.ToLower(typ) {
	case "string":
		return "VARCHAR(191)" // limite de índice utf8mb4
	case "int":
		return "INT"
	case "bigint":
		return "BIGINT"
	case "boolean", "bool":
		return "TINYINT(1)"
	case "datetime":
		return "DATETIME"
	case "float":
		return "DOUBLE"
	case "decimal":
		return "DECIMAL(65, 30)"
	case "json":
		return "JSON"
	case "bytes":
		return "BLOB"
	case "uuid":
		return "CHAR(36)"
	default:
		return "VARCHAR(191)"
	}
}

func (d *MySQLDialect) MapDefaultValue(value string) string {
	v := strings.ToLower(value)
	switch {
	case isAutoIncrement(v):
		return ""
	case isNow(v):
		return "CURRENT_TIMESTAMP"
	case isUUIDDefault(v):
		return "(UUID())"
	default:
		return value
	}
}

func (d *MySQLDialect) GetAutoIncrementKeyword() string {
	return "AUTO_INCREMENT"
}

func (d *MySQLDialect) GetNowFunction() string {
	return "NOW()"
}

func (d *MySQLDialect) GetDriverName() string {
	return "mysql"
}
