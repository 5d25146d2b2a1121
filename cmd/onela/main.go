package main

import (
	"fmt"
	"os"

	"github.com/carlosnayan/onela-go/cmd/onela/cmd"
	"github.com/carlosnayan/onela-go/internal/errors"

	// Database drivers
	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	_ "github.com/go-sql-driver/mysql"   // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"   // PostgreSQL driver (pgx)
	_ "github.com/lib/pq"                // PostgreSQL driver (driver = "postgres")
	_ "github.com/mattn/go-sqlite3"      // SQLite driver (cgo)
	_ "modernc.org/sqlite"               // SQLite driver (pure Go, driver = "sqlite")
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cmd.Warning("Error:"), errors.SanitizeError(err))
		os.Exit(1)
	}
}
