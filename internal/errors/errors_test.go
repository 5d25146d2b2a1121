package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMapDriverError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   OperationType
		want *OnelaError
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, OpInsert, ErrUniqueConstraint},
		{"mysql fk", &mysql.MySQLError{Number: 1452}, OpInsert, ErrForeignKeyConstraint},
		{"mysql null", &mysql.MySQLError{Number: 1048}, OpUpdate, ErrNullConstraint},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, OpInsert, ErrUniqueConstraint},
		{"pgx canceled", &pgconn.PgError{Code: "57014"}, OpQuery, ErrTimeout},
		{"pq fk", &pq.Error{Code: "23503"}, OpDelete, ErrForeignKeyConstraint},
		{"mssql unique", mssql.Error{Number: 2627}, OpInsert, ErrUniqueConstraint},
		{"mssql null", mssql.Error{Number: 515}, OpInsert, ErrNullConstraint},
		{"wrapped typed", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23502"}), OpInsert, ErrNullConstraint},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), OpInsert, ErrUniqueConstraint},
		{"oracle message", errors.New("ORA-02291: integrity constraint violated"), OpInsert, ErrForeignKeyConstraint},
		{"deadline", errors.New("context deadline exceeded"), OpQuery, ErrTimeout},
		{"refused", errors.New("dial tcp: connection refused"), OpQuery, ErrConnectionFailed},
		{"no rows on FindOne", sql.ErrNoRows, OpFindOne, ErrNotFound},
		{"other", errors.New("syntax error near FROM"), OpQuery, ErrQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDriverError(tt.err, tt.op)
			if !errors.Is(got, tt.want) {
				t.Errorf("MapDriverError() = %v, want %s", got, tt.want.Code)
			}
			if !strings.Contains(got.Error(), tt.err.Error()) {
				t.Errorf("MapDriverError() lost the driver error: %v", got)
			}
		})
	}
}

func TestMapDriverError_Passthrough(t *testing.T) {
	if err := MapDriverError(nil, OpQuery); err != nil {
		t.Errorf("MapDriverError(nil) = %v", err)
	}
	if err := MapDriverError(sql.ErrNoRows, OpFind); err != nil {
		t.Errorf("no rows on Find = %v, want nil", err)
	}

	built := Newf(ErrInvalidIdentifier, "%q", "a;b")
	if got := MapDriverError(built, OpQuery); got != built {
		t.Errorf("onela errors must pass through unchanged, got %v", got)
	}
}

func TestIsBuildError(t *testing.T) {
	if !IsBuildError(fmt.Errorf("ctx: %w", Newf(ErrUnsafeFormatValue, "x"))) {
		t.Error("ErrUnsafeFormatValue should be a build error")
	}
	if IsBuildError(WrapOnelaError(ErrTimeout, nil)) {
		t.Error("ErrTimeout is not a build error")
	}
	if IsBuildError(errors.New("plain")) {
		t.Error("plain error is not a build error")
	}
}

func TestOnelaError_IsByCode(t *testing.T) {
	err := Newf(ErrNotFound, "users id=%d", 7)
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("codes must not match across sentinels")
	}
	if want := "record not found: users id=7"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSanitizeError(t *testing.T) {
	old := ProductionMode
	t.Cleanup(func() { ProductionMode = old })

	driverErr := errors.New(`relation "users" does not exist`)

	ProductionMode = false
	if got := SanitizeError(driverErr); got != driverErr {
		t.Errorf("development mode must keep the error, got %v", got)
	}

	ProductionMode = true
	if got := SanitizeError(driverErr).Error(); got != "database operation failed" {
		t.Errorf("SanitizeError() = %q", got)
	}
	built := Newf(ErrInvalidIdentifier, "%q", "users;")
	if got := SanitizeError(built); got != built {
		t.Errorf("build errors must not be sanitized, got %v", got)
	}
	if got := WrapError(driverErr, "failed to begin transaction").Error(); got != "failed to begin transaction" {
		t.Errorf("WrapError() = %q", got)
	}
}
