package driver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/carlosnayan/onela-go/internal/cache"
	contextutil "github.com/carlosnayan/onela-go/internal/context"
	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/errors"
)

// PgxPoolDriver selects the native pgx pool instead of database/sql.
const PgxPoolDriver = "pgxpool"

// DefaultPingTimeout bounds the connectivity check done by Open.
var DefaultPingTimeout = 5 * time.Second

// StmtCleanupInterval is how often Open's statement cache drops expired
// statements.
var StmtCleanupInterval = time.Minute

// Options describes a connection.
type Options struct {
	// Provider is a dialect name or alias; detected from URL when empty.
	Provider string
	URL      string
	// Driver overrides the database/sql driver name ("postgres" for lib/pq,
	// "sqlite" for modernc.org/sqlite) or selects PgxPoolDriver.
	Driver      string
	Pool        *PoolConfig
	StmtCache   *cache.StmtCache
	PingTimeout time.Duration
}

// importHints names the package that registers each driver.
var importHints = map[string]string{
	"mysql":     "github.com/go-sql-driver/mysql",
	"pgx":       "github.com/jackc/pgx/v5/stdlib",
	"postgres":  "github.com/lib/pq",
	"sqlite3":   "github.com/mattn/go-sqlite3",
	"sqlite":    "modernc.org/sqlite",
	"sqlserver": "github.com/denisenkom/go-mssqldb",
}

// Open connects to the database described by opts, configures the pool
// and pings it. The returned dialect matches the provider.
func Open(ctx context.Context, opts Options) (DB, dialect.Dialect, error) {
	provider := opts.Provider
	if provider == "" {
		provider = DetectProvider(opts.URL)
		if provider == "" {
			return nil, nil, errors.Newf(errors.ErrUnsupportedDialect, "cannot detect provider from datasource url")
		}
	}
	d, err := dialect.New(provider)
	if err != nil {
		return nil, nil, err
	}

	timeout := opts.PingTimeout
	if timeout == 0 {
		timeout = DefaultPingTimeout
	}
	pingCtx, cancel := contextutil.WithTimeout(ctx, timeout)
	defer cancel()

	if opts.Driver == PgxPoolDriver {
		if d.Name() != "postgresql" {
			return nil, nil, errors.Newf(errors.ErrUnsupportedDialect, "%s driver requires postgresql, got %s", PgxPoolDriver, d.Name())
		}
		pool, err := NewPgxPoolWithConfig(ctx, opts.URL, opts.Pool)
		if err != nil {
			return nil, nil, errors.WrapOnelaError(errors.ErrConnectionFailed, err)
		}
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, errors.WrapOnelaError(errors.ErrConnectionFailed, err)
		}
		return NewPgxPool(pool), d, nil
	}

	driverName := opts.Driver
	if driverName == "" {
		driverName = d.GetDriverName()
	}
	dsn, err := DataSource(d.Name(), opts.URL)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		if hint, ok := importHints[driverName]; ok {
			err = fmt.Errorf("%w (import _ %q)", err, hint)
		}
		return nil, nil, errors.WrapOnelaError(errors.ErrConnectionFailed, err)
	}
	ConfigurePool(db, opts.Pool)

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, errors.WrapOnelaError(errors.ErrConnectionFailed, err)
	}

	if opts.StmtCache == nil {
		return NewSQLDB(db), d, nil
	}
	adapter := NewSQLDB(db, WithStmtCache(opts.StmtCache))
	cleanupCtx, stop := context.WithCancel(context.Background())
	opts.StmtCache.StartCleanup(cleanupCtx, StmtCleanupInterval)
	adapter.stopCleanup = stop
	return adapter, d, nil
}

// DetectProvider detects the canonical dialect name from a datasource URL.
// It returns "" when the URL matches no known form.
func DetectProvider(rawURL string) string {
	u := strings.ToLower(strings.TrimSpace(rawURL))

	switch {
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return "postgresql"
	case strings.HasPrefix(u, "mysql://"), strings.HasPrefix(u, "mariadb://"):
		return "mysql"
	case strings.HasPrefix(u, "sqlite://"), strings.HasPrefix(u, "sqlite3://"),
		strings.HasPrefix(u, "file:"), u == ":memory:",
		strings.HasSuffix(u, ".db"), strings.HasSuffix(u, ".sqlite"), strings.HasSuffix(u, ".sqlite3"):
		return "sqlite"
	case strings.HasPrefix(u, "sqlserver://"), strings.HasPrefix(u, "mssql://"):
		return "sqlserver"
	case strings.HasPrefix(u, "oracle://"), strings.HasPrefix(u, "oracledb://"):
		return "oracle"
	case strings.Contains(u, "host=") && strings.Contains(u, "dbname="):
		// libpq key/value form
		return "postgresql"
	}

	// user:pass@tcp(host:port)/db
	if strings.Contains(rawURL, "@") {
		if _, err := mysql.ParseDSN(rawURL); err == nil {
			return "mysql"
		}
	}
	return ""
}

// DataSource converts a datasource URL into the form the provider's driver
// expects.
func DataSource(provider, rawURL string) (string, error) {
	switch provider {
	case "mysql":
		return mysqlDSN(rawURL)
	case "sqlite":
		for _, prefix := range []string{"sqlite://", "sqlite3://"} {
			if strings.HasPrefix(strings.ToLower(rawURL), prefix) {
				return rawURL[len(prefix):], nil
			}
		}
	case "sqlserver":
		if strings.HasPrefix(strings.ToLower(rawURL), "mssql://") {
			return "sqlserver://" + rawURL[len("mssql://"):], nil
		}
	}
	return rawURL, nil
}

// mysqlDSN accepts a mysql:// URL or a native DSN and returns a native DSN.
// parseTime is enabled unless the URL sets it.
func mysqlDSN(rawURL string) (string, error) {
	native := rawURL
	explicitParseTime := strings.Contains(rawURL, "parseTime=")

	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "mysql://") || strings.HasPrefix(lower, "mariadb://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", errors.Newf(errors.ErrConnectionFailed, "invalid mysql url")
		}
		addr := u.Host
		if u.Port() == "" {
			addr = u.Hostname() + ":3306"
		}
		var sb strings.Builder
		if u.User != nil {
			sb.WriteString(u.User.Username())
			if pass, ok := u.User.Password(); ok {
				sb.WriteString(":" + pass)
			}
			sb.WriteString("@")
		}
		sb.WriteString("tcp(" + addr + ")/" + strings.TrimPrefix(u.Path, "/"))
		if u.RawQuery != "" {
			sb.WriteString("?" + u.RawQuery)
		}
		native = sb.String()
	}

	cfg, err := mysql.ParseDSN(native)
	if err != nil {
		return "", errors.WrapOnelaError(errors.ErrConnectionFailed, err)
	}
	if !explicitParseTime {
		cfg.ParseTime = true
	}
	return cfg.FormatDSN(), nil
}
