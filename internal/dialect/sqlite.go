package dialect

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements the SQLite dialect
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string {
	return "sqlite"
}

func (d *SQLiteDialect) Placeholder(index int, name string) string {
	return "?"
}

func (d *SQLiteDialect) QuoteIdentifier(name string) string {
	return quoteParts(name, "`", "`")
}

func (d *SQLiteDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

func (d *SQLiteDialect) TableAlias(table, alias string) string {
	return table + " AS " + alias
}

// Pagination uses the same LIMIT ?, ? form and bind order as MySQL.
func (d *SQLiteDialect) Pagination(offset, limit, index int, name string) Pagination {
	return Pagination{
		SQL:    "LIMIT ?, ?",
		Params: []any{offset, limit},
		Next:   index + 2,
	}
}

// MaxParams: SQLITE_MAX_VARIABLE_NUMBER padrão desde o 3.32
func (d *SQLiteDialect) MaxParams() int {
	return 32766
}

func (d *SQLiteDialect) OffsetRequiresOrderBy() bool {
	return false
}

func (d *SQLiteDialect) Insert(table string, columns []string, rows [][]string, returning []string) string {
	suffix := ""
	if len(returning) > 0 {
		// SQLite 3.35+
		suffix = "RETURNING " + strings.Join(returning, ", ")
	}
	return valuesInsert(table, columns, rows, "", suffix)
}

// Regexp requires a regexp() user function on the connection.
func (d *SQLiteDialect) Regexp(column, placeholder string) (string, bool) {
	return fmt.Sprintf("%s REGEXP %s", column, placeholder), true
}

func (d *SQLiteDialect) Bind(params []any, name string) []any {
	return params
}

func (d *SQLiteDialect) MapType(typ string, isNullable bool) string {
	// SQLite tem tipagem dinâmica; mapeamos para as afinidades recomendadas
	switch strings.ToLower(typ) {
	case "string", "uuid":
		return "TEXT"
	case "int", "bigint":
		return "INTEGER"
	case "boolean", "bool":
		return "INTEGER" // 0/1
	case "datetime":
		return "TEXT" // ISO8601
	case "float":
		return "REAL"
	case "decimal":
		return "NUMERIC"
	case "json":
		return "TEXT"
	case "bytes":
		return "BLOB"
	}
	if isSQLType(strings.ToUpper(typ)) {
		return typ
	}
	return "TEXT"
}

func (d *SQLiteDialect) MapDefaultValue(value string) string {
	v := strings.ToLower(value)
	switch {
	case isAutoIncrement(v):
		return ""
	case isNow(v):
		return "(datetime('now'))"
	case isUUIDDefault(v):
		return "(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))),2) || '-' || substr('89ab',abs(random()) % 4 + 1, 1) || substr(lower(hex(randomblob(2))),2) || '-' || lower(hex(randomblob(6))))"
	default:
		return value
	}
}

func (d *SQLiteDialect) GetAutoIncrementKeyword() string {
	return "AUTOINCREMENT"
}

func (d *SQLiteDialect) GetNowFunction() string {
	return "datetime('now')"
}

func (d *SQLiteDialect) GetDriverName() string {
	return "sqlite3"
}
