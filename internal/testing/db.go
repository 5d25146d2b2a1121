package testing

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
)

// SetupTestDB opens a test database for provider and closes it when the
// test ends. SQLite always runs; server databases are skipped unless
// TEST_DATABASE_URL_<PROVIDER> (or TEST_DATABASE_URL) is set.
func SetupTestDB(t *testing.T, provider string) (driver.DB, dialect.Dialect) {
	t.Helper()
	canonical, err := dialect.Resolve(provider)
	if err != nil {
		t.Fatalf("unsupported provider: %s", provider)
	}
	if canonical == "sqlite" {
		return SetupSQLiteTestDB(t)
	}
	return SetupServerTestDB(t, canonical)
}

// GetTestDatabaseURL gets test database URL from environment variables
func GetTestDatabaseURL(provider string) string {
	if url := os.Getenv("TEST_DATABASE_URL_" + strings.ToUpper(provider)); url != "" {
		return url
	}
	return os.Getenv("TEST_DATABASE_URL")
}

// SkipIfNoDatabase skips the test if database is not available
func SkipIfNoDatabase(t *testing.T, provider string) {
	t.Helper()
	if GetTestDatabaseURL(provider) == "" {
		t.Skipf("TEST_DATABASE_URL_%s not set, skipping %s test", strings.ToUpper(provider), provider)
	}
}

// SetupServerTestDB connects to a running database server
func SetupServerTestDB(t *testing.T, provider string) (driver.DB, dialect.Dialect) {
	t.Helper()
	SkipIfNoDatabase(t, provider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, d, err := driver.Open(ctx, driver.Options{Provider: provider, URL: GetTestDatabaseURL(provider)})
	if err != nil {
		t.Skipf("%s not available: %v", provider, err)
	}
	t.Cleanup(func() { db.Close() })
	return db, d
}
