package dialect

import "strings"

// isSQLType checks if a type is already a native SQL type and should be
// passed through MapType untouched.
func isSQLType(typ string) bool {
	sqlTypes := []string{
		"TEXT", "VARCHAR", "NVARCHAR", "CHAR", "NCHAR", "DATE", "TIME", "TIMESTAMP", "TIMESTAMPTZ",
		"DECIMAL", "NUMERIC", "NUMBER", "SMALLINT", "TINYINT", "INTEGER", "INT", "BIGINT",
		"REAL", "DOUBLE PRECISION", "DOUBLE", "FLOAT", "BOOLEAN", "BOOL",
		"JSON", "JSONB", "BYTEA", "BLOB", "CLOB", "UUID", "UNIQUEIDENTIFIER", "INET", "CIDR", "MONEY",
		"BIT", "VARBIT", "VARBINARY", "RAW",
	}
	for _, sqlType := range sqlTypes {
		if strings.HasPrefix(typ, sqlType) {
			return true
		}
	}
	return false
}

// logicalTypes are the portable type names accepted by MapType.
var logicalTypes = map[string]bool{
	"string": true, "int": true, "bigint": true, "boolean": true, "bool": true,
	"datetime": true, "float": true, "decimal": true, "json": true, "bytes": true, "uuid": true,
}

func isLogicalType(typ string) bool {
	return logicalTypes[strings.ToLower(typ)]
}

// quoteParts quotes each dot-separated part of name, leaving "*" bare.
func quoteParts(name, open, close string) string {
	if name == "*" {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" || p == "" {
			continue
		}
		parts[i] = open + p + close
	}
	return strings.Join(parts, ".")
}

// quoteLiteral wraps value in single quotes, doubling embedded quotes.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// valuesInsert builds the multi-row VALUES form shared by most dialects.
// between is inserted after the column list (SQL Server OUTPUT), suffix at
// the end (RETURNING).
func valuesInsert(table string, columns []string, rows [][]string, between, suffix string) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(")")
	if between != "" {
		sb.WriteString(" ")
		sb.WriteString(between)
	}
	sb.WriteString(" VALUES ")
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString(")")
	}
	if suffix != "" {
		sb.WriteString(" ")
		sb.WriteString(suffix)
	}
	return sb.String()
}

func isAutoIncrement(value string) bool {
	return value == "autoincrement()" || value == "autoincrement"
}

func isNow(value string) bool {
	return value == "now()" || value == "now"
}

func isUUIDDefault(value string) bool {
	return strings.HasPrefix(value, "uuid") || strings.HasPrefix(value, "cuid")
}
