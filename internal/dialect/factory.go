package dialect

import (
	"sort"
	"strings"

	"github.com/carlosnayan/onela-go/internal/errors"
)

var dialects = map[string]Dialect{
	"mysql":      &MySQLDialect{},
	"postgresql": &PostgreSQLDialect{},
	"sqlite":     &SQLiteDialect{},
	"sqlserver":  &SQLServerDialect{},
	"oracle":     &OracleDialect{},
}

// aliases maps accepted alternative names to canonical dialect names.
var aliases = map[string]string{
	"postgres":  "postgresql",
	"pg":        "postgresql",
	"pgsql":     "postgresql",
	"mariadb":   "mysql",
	"tidb":      "mysql",
	"oceanbase": "mysql",
	"polardb":   "mysql",
	"sqlite3":   "sqlite",
	"mssql":     "sqlserver",
	"tedious":   "sqlserver",
	"oracledb":  "oracle",
}

// Resolve returns the canonical dialect name for name or an alias of it.
func Resolve(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	if _, ok := dialects[key]; !ok {
		return "", errors.Newf(errors.ErrUnsupportedDialect, "%q", name)
	}
	return key, nil
}

// New resolves a dialect by name or alias. Unknown names fail with
// ErrUnsupportedDialect; there is no default dialect.
func New(name string) (Dialect, error) {
	canonical, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return dialects[canonical], nil
}

// MustNew is like New but panics on unknown names.
func MustNew(name string) Dialect {
	d, err := New(name)
	if err != nil {
		panic(err)
	}
	return d
}

// Names returns the canonical dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the aliases of canonical, sorted.
func Aliases(canonical string) []string {
	var out []string
	for alias, target := range aliases {
		if target == canonical {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}
