package testing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
)

// MustExec executes query and fails the test on error
func MustExec(t *testing.T, db driver.DB, query string, args ...any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.Exec(ctx, query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// ApplyScript executes every statement of a DDL script (statements end
// with ";" at the end of a line)
func ApplyScript(t *testing.T, db driver.DB, script string) {
	t.Helper()
	for _, stmt := range strings.Split(script, ";\n") {
		stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		if stmt == "" {
			continue
		}
		MustExec(t, db, stmt)
	}
}

// DropTablesOnCleanup drops tables when the test ends
func DropTablesOnCleanup(t *testing.T, db driver.DB, d dialect.Dialect, tables ...string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, table := range tables {
			if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+d.QuoteIdentifier(table)); err != nil {
				t.Logf("warning: failed to drop %s: %v", table, err)
			}
		}
	})
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db driver.DB, d dialect.Dialect, table string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var n int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+d.QuoteIdentifier(table)).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// WithTestTransaction executes a test function within a transaction and rolls back
func WithTestTransaction(t *testing.T, db driver.DB, fn func(tx driver.Tx)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
		if err := tx.Rollback(ctx); err != nil {
			t.Logf("warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(tx)
}
