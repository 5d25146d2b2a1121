package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ProductionMode = os.Getenv("ENV") == "production" || os.Getenv("ENV") == "prod"

type OnelaError struct {
	Code    string
	Message string
	cause   error
}

func (e *OnelaError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *OnelaError) Unwrap() error {
	return e.cause
}

func (e *OnelaError) Is(target error) bool {
	if t, ok := target.(*OnelaError); ok {
		return e.Code == t.Code
	}
	return false
}

// Statement construction errors. These are caller bugs: they are returned
// before any SQL text is assembled and are never retried.
var (
	ErrInvalidIdentifier  = &OnelaError{Code: "O1001", Message: "invalid identifier"}
	ErrUnsafeFormatValue  = &OnelaError{Code: "O1002", Message: "unsafe format value"}
	ErrUnsupportedDialect = &OnelaError{Code: "O1003", Message: "unsupported dialect"}
	ErrEmptyBatchInsert   = &OnelaError{Code: "O1004", Message: "batch insert requires at least one row"}
	ErrInvalidCondition   = &OnelaError{Code: "O1005", Message: "invalid condition"}
	ErrNoFieldsToUpdate   = &OnelaError{Code: "O1006", Message: "no fields to update"}
	ErrNoColumns          = &OnelaError{Code: "O1007", Message: "insert requires at least one column"}
	ErrEmptyAggregate     = &OnelaError{Code: "O1008", Message: "no supported aggregate function"}
	ErrLimitExceeded      = &OnelaError{Code: "O1009", Message: "request exceeds builder limits"}
	ErrEmptyWhere         = &OnelaError{Code: "O1010", Message: "destructive operation requires a where condition"}
)

// Execution errors mapped from driver failures.
var (
	ErrNotFound             = &OnelaError{Code: "O2001", Message: "record not found"}
	ErrUniqueConstraint     = &OnelaError{Code: "O2002", Message: "unique constraint violation"}
	ErrForeignKeyConstraint = &OnelaError{Code: "O2003", Message: "foreign key constraint violation"}
	ErrNullConstraint       = &OnelaError{Code: "O2004", Message: "not null constraint violation"}
	ErrQueryFailed          = &OnelaError{Code: "O2005", Message: "query failed"}
	ErrTooManyRows          = &OnelaError{Code: "O2006", Message: "result set too large"}
	ErrTxStarted            = &OnelaError{Code: "O2007", Message: "cannot start a transaction within a transaction"}

	ErrConnectionFailed = &OnelaError{Code: "O3001", Message: "database not reachable"}
	ErrTimeout          = &OnelaError{Code: "O3002", Message: "operation timeout"}
)

type OperationType string

const (
	OpFind      OperationType = "Find"
	OpFindOne   OperationType = "FindOne"
	OpFindList  OperationType = "FindList"
	OpCount     OperationType = "Count"
	OpAggregate OperationType = "Aggregate"
	OpInsert    OperationType = "Insert"
	OpUpdate    OperationType = "Update"
	OpDelete    OperationType = "Delete"
	OpQuery     OperationType = "Query"
	OpExec      OperationType = "Exec"
)

func WrapOnelaError(sentinel *OnelaError, cause error) *OnelaError {
	return &OnelaError{Code: sentinel.Code, Message: sentinel.Message, cause: cause}
}

// Newf wraps sentinel with a formatted detail message.
func Newf(sentinel *OnelaError, format string, args ...interface{}) *OnelaError {
	return WrapOnelaError(sentinel, fmt.Errorf(format, args...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUniqueConstraint(err error) bool {
	return errors.Is(err, ErrUniqueConstraint)
}

func IsForeignKeyConstraint(err error) bool {
	return errors.Is(err, ErrForeignKeyConstraint)
}

func IsNullConstraint(err error) bool {
	return errors.Is(err, ErrNullConstraint)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsConnectionFailed(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsBuildError reports whether err is one of the statement construction
// errors, i.e. a malformed request rather than an operational failure.
func IsBuildError(err error) bool {
	var oe *OnelaError
	if !errors.As(err, &oe) {
		return false
	}
	return strings.HasPrefix(oe.Code, "O1")
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no rows") ||
		strings.Contains(errStr, "ErrNoRows")
}

func isUniqueViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unique constraint") ||
		strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "duplicate entry") ||
		strings.Contains(errStr, "ora-00001")
}

func isForeignKeyViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "foreign key constraint") ||
		strings.Contains(errStr, "ora-02291") ||
		strings.Contains(errStr, "ora-02292")
}

func isNullViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "not null constraint") ||
		strings.Contains(errStr, "not-null constraint") ||
		strings.Contains(errStr, "ora-01400")
}

func isTimeout(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isConnectionError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable")
}

// MapDriverError translates an error returned by a database driver into one
// of the execution sentinels. Typed driver errors are inspected first (see
// driver_errors.go), message heuristics cover the rest.
func MapDriverError(err error, op OperationType) error {
	if err == nil {
		return nil
	}

	var oe *OnelaError
	if errors.As(err, &oe) {
		return err
	}

	if isNoRows(err) {
		switch op {
		case OpFind, OpFindList, OpQuery:
			return nil
		default:
			return WrapOnelaError(ErrNotFound, err)
		}
	}

	if sentinel := classifyDriverError(err); sentinel != nil {
		return WrapOnelaError(sentinel, err)
	}

	switch {
	case isUniqueViolation(err):
		return WrapOnelaError(ErrUniqueConstraint, err)
	case isForeignKeyViolation(err):
		return WrapOnelaError(ErrForeignKeyConstraint, err)
	case isNullViolation(err):
		return WrapOnelaError(ErrNullConstraint, err)
	case isTimeout(err):
		return WrapOnelaError(ErrTimeout, err)
	case isConnectionError(err):
		return WrapOnelaError(ErrConnectionFailed, err)
	}

	return WrapOnelaError(ErrQueryFailed, err)
}

func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	if !ProductionMode {
		return err
	}

	// Build errors carry only identifier names supplied by the caller.
	if IsBuildError(err) {
		return err
	}

	errMsg := err.Error()
	errMsg = sanitizeTableNames(errMsg)
	errMsg = sanitizeColumnNames(errMsg)
	errMsg = sanitizeSQLDetails(errMsg)

	return fmt.Errorf("%s", errMsg)
}

func sanitizeTableNames(msg string) string {
	patterns := []string{"table", "relation", "FROM", "INTO", "UPDATE", "DELETE FROM"}
	for _, pattern := range patterns {
		if strings.Contains(strings.ToLower(msg), strings.ToLower(pattern)) {
			return "database operation failed"
		}
	}
	return msg
}

func sanitizeColumnNames(msg string) string {
	patterns := []string{"column", "field", "SET", "WHERE"}
	for _, pattern := range patterns {
		if strings.Contains(strings.ToLower(msg), strings.ToLower(pattern)) {
			return "database operation failed"
		}
	}
	return msg
}

func sanitizeSQLDetails(msg string) string {
	if strings.Contains(strings.ToLower(msg), "sql") ||
		strings.Contains(strings.ToLower(msg), "syntax") ||
		strings.Contains(strings.ToLower(msg), "constraint") {
		return "database operation failed"
	}
	return msg
}

func WrapError(err error, genericMsg string) error {
	if err == nil {
		return nil
	}
	if ProductionMode {
		return fmt.Errorf("%s", genericMsg)
	}
	return fmt.Errorf("%s: %w", genericMsg, err)
}
