package dialect

import (
	"fmt"
	"strings"
)

// PostgreSQLDialect implements the PostgreSQL dialect
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) Name() string {
	return "postgresql"
}

func (d *PostgreSQLDialect) Placeholder(index int, name string) string {
	return fmt.Sprintf("$%d", index)
}

func (d *PostgreSQLDialect) QuoteIdentifier(name string) string {
	return quoteParts(name, `"`, `"`)
}

func (d *PostgreSQLDialect) QuoteString(value string) string {
	return quoteLiteral(value)
}

func (d *PostgreSQLDialect) TableAlias(table, alias string) string {
	return table + " AS " + alias
}

func (d *PostgreSQLDialect) Pagination(offset, limit, index int, name string) Pagination {
	return Pagination{
		SQL:    fmt.Sprintf("LIMIT $%d OFFSET $%d", index, index+1),
		Params: []any{limit, offset},
		Next:   index + 2,
	}
}

// MaxParams: o protocolo usa int16 para a contagem de parâmetros
func (d *PostgreSQLDialect) MaxParams() int {
	return 65535
}

func (d *PostgreSQLDialect) OffsetRequiresOrderBy() bool {
	return false
}

func (d *PostgreSQLDialect) Insert(table string, columns []string, rows [][]string, returning []string) string {
	suffix := ""
	if len(returning) > 0 {
		suffix = "RETURNING " + strings.Join(returning, ", ")
	}
	return valuesInsert(table, columns, rows, "", suffix)
}

func (d *PostgreSQLDialect) Regexp(column, placeholder string) (string, bool) {
	return fmt.Sprintf("%s ~ %s", column, placeholder), true
}

func (d *PostgreSQLDialect) Bind(params []any, name string) []any {
	return params
}

func (d *PostgreSQLDialect) MapType(typ string, isNullable bool) string {
	// Tipos lógicos primeiro, para "uuid" não ser confundido com UUID nativo
	if !isLogicalType(typ) && isSQLType(strings.ToUpper(typ)) {
		return typ
	}

	switch strings.ToLower(typ) {
	case "string":
		return "TEXT"
	case "int":
		return "INTEGER"
	case "bigint":
		return "BIGINT"
	case "boolean", "bool":
		return "BOOLEAN"
	case "datetime":
		return "TIMESTAMP"
	case "float":
		return "DOUBLE PRECISION"
	case "decimal":
		return "DECIMAL(65, 30)"
	case "json":
		return "JSONB"
	case "bytes":
		return "BYTEA"
	case "uuid":
		return "UUID"
	default:
		return "TEXT"
	}
}

func (d *PostgreSQLDialect) MapDefaultValue(value string) string {
	v := strings.ToLower(value)
	switch {
	case isAutoIncrement(v):
		return "" // tratado como SERIAL
	case isNow(v):
		return "NOW()"
	case isUUIDDefault(v):
		return "gen_random_uuid()"
	default:
		return value
	}
}

func (d *PostgreSQLDialect) GetAutoIncrementKeyword() string {
	return "SERIAL"
}

func (d *PostgreSQLDialect) GetNowFunction() string {
	return "NOW()"
}

func (d *PostgreSQLDialect) GetDriverName() string {
	return "pgx"
}
