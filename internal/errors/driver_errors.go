package errors

import (
	"errors"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes, shared by pgx and lib/pq.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgQueryCanceled       = "57014"
)

// classifyDriverError inspects the typed errors of the drivers this module
// registers. It returns nil when err is not one of them.
func classifyDriverError(err error) *OnelaError {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return ErrUniqueConstraint
		case 1451, 1452:
			return ErrForeignKeyConstraint
		case 1048:
			return ErrNullConstraint
		case 3024:
			return ErrTimeout
		}
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code))
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		switch msErr.Number {
		case 2627, 2601:
			return ErrUniqueConstraint
		case 547:
			return ErrForeignKeyConstraint
		case 515:
			return ErrNullConstraint
		}
		return nil
	}

	return nil
}

func classifySQLState(code string) *OnelaError {
	switch code {
	case pgUniqueViolation:
		return ErrUniqueConstraint
	case pgForeignKeyViolation:
		return ErrForeignKeyConstraint
	case pgNotNullViolation:
		return ErrNullConstraint
	case pgQueryCanceled:
		return ErrTimeout
	}
	return nil
}
