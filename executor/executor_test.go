package executor

import (
	"bytes"
	"context"
	"database/sql"
	stderrors "errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnayan/onela-go/builder"
	contextutil "github.com/carlosnayan/onela-go/internal/context"
	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/logger"
	"github.com/carlosnayan/onela-go/internal/query"
)

func newTestExecutor(t *testing.T, dialectName string, opts ...Option) (*Executor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts = append([]Option{WithLogger(logger.NewLogger(nil, io.Discard))}, opts...)
	return New(driver.NewSQLDB(db), dialect.MustNew(dialectName), opts...), mock
}

func TestExecutor_Query(t *testing.T) {
	e, mock := newTestExecutor(t, "postgresql")
	b, err := builder.NewWithDialect(e.Dialect()).BuildSelect(builder.QueryParams{
		Where:   []builder.Condition{builder.Eq("status", "active")},
		Configs: builder.Configs{TableName: "users"},
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(b.SQL)).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ana")).
			AddRow(int64(2), "bia"))

	rows, err := e.Query(context.Background(), b, errors.OpFind)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"id": int64(1), "name": "ana"},
		{"id": int64(2), "name": "bia"},
	}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_QueryEmpty(t *testing.T) {
	e, mock := newTestExecutor(t, "mysql")
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := e.RawQuery(context.Background(), "SELECT id FROM `users`")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExecutor_SQLServerNamedParams(t *testing.T) {
	e, mock := newTestExecutor(t, "sqlserver")
	b, err := builder.NewWithDialect(e.Dialect()).BuildDelete(builder.DeleteParams{
		Where:   []builder.Condition{builder.Eq("id", 7)},
		Configs: builder.Configs{TableName: "users"},
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(b.SQL)).
		WithArgs(sql.Named("p1", 7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := e.Exec(context.Background(), b, errors.OpDelete)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutor_DialectMismatch(t *testing.T) {
	e, _ := newTestExecutor(t, "mysql")
	_, err := e.Exec(context.Background(), &builder.Built{SQL: "DELETE FROM x", Params: []any{}, Dialect: "postgresql"}, errors.OpDelete)
	assert.ErrorIs(t, err, errors.ErrUnsupportedDialect)
}

func TestExecutor_QueryRow(t *testing.T) {
	e, mock := newTestExecutor(t, "sqlite")

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3))
	var total int
	require.NoError(t, e.QueryRow(context.Background(), &builder.Built{SQL: "SELECT COUNT(*) AS total FROM `t`", Params: []any{}}, errors.OpCount, &total))
	assert.Equal(t, 3, total)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	var id int
	err := e.QueryRow(context.Background(), &builder.Built{SQL: "SELECT id FROM `t`", Params: []any{}}, errors.OpFindOne, &id)
	assert.True(t, errors.IsNotFound(err))
}

func TestExecutor_MapsDriverErrors(t *testing.T) {
	e, mock := newTestExecutor(t, "postgresql")
	mock.ExpectExec("INSERT").WillReturnError(stderrors.New(`duplicate key value violates unique constraint "users_email_key"`))

	_, err := e.RawExec(context.Background(), `INSERT INTO "users" (email) VALUES ($1)`, "a@b.c")
	assert.True(t, errors.IsUniqueConstraint(err))
}

func TestExecutor_Timeout(t *testing.T) {
	e, mock := newTestExecutor(t, "postgresql", WithTimeouts(contextutil.Timeouts{Query: 20 * time.Millisecond, Transaction: time.Second}))
	mock.ExpectQuery("SELECT").WillDelayFor(time.Second).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := e.RawQuery(context.Background(), "SELECT 1")
	assert.True(t, errors.IsTimeout(err), "err = %v", err)
}

func TestExecutor_MaxRows(t *testing.T) {
	e, mock := newTestExecutor(t, "postgresql", WithMaxRows(2))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))

	_, err := e.RawQuery(context.Background(), "SELECT id FROM t")
	assert.ErrorIs(t, err, errors.ErrTooManyRows)
}

func TestExecutor_RawQuerySizeLimit(t *testing.T) {
	e, _ := newTestExecutor(t, "postgresql")
	_, err := e.RawExec(context.Background(), string(make([]byte, 10*1024*1024+1)))
	assert.ErrorIs(t, err, errors.ErrLimitExceeded)
}

func TestDetectQueryType(t *testing.T) {
	tests := map[string]string{
		"SELECT 1":               "SELECT",
		"  insert into t":        "INSERT",
		"UPDATE t SET a = 1":     "UPDATE",
		"DELETE FROM t":          "DELETE",
		"CREATE TABLE t (a INT)": "CREATE",
		"WITH x AS (SELECT 1)":   "UNKNOWN",
	}
	for query, want := range tests {
		if got := detectQueryType(query); got != want {
			t.Errorf("detectQueryType(%q) = %s, want %s", query, got, want)
		}
	}
}

func TestExecutor_RepeatDetector(t *testing.T) {
	var buf bytes.Buffer
	e, mock := newTestExecutor(t, "mysql",
		WithLogger(logger.NewLogger([]string{"warn"}, &buf)),
		WithRepeatDetector(query.NewRepeatDetector(2, time.Minute)))

	for i := 0; i < 2; i++ {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(i))
		_, err := e.RawQuery(context.Background(), "SELECT id FROM `posts` WHERE user_id = ?", i)
		require.NoError(t, err)
	}
	assert.Contains(t, buf.String(), "possible N+1")
	assert.Equal(t, 1, strings.Count(buf.String(), "possible N+1"))
}
