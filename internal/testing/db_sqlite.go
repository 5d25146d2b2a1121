package testing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
)

// SetupSQLiteTestDB creates a SQLite test database in a temp file
func SetupSQLiteTestDB(t *testing.T) (driver.DB, dialect.Dialect) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "onela_test.db")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, d, err := driver.Open(ctx, driver.Options{
		Provider: "sqlite",
		URL:      "file:" + path,
		Driver:   "sqlite",
		Pool:     &driver.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	})
	if err != nil {
		t.Fatalf("failed to open SQLite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, d
}
