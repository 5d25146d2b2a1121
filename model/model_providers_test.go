package model

import (
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/ddl"
	"github.com/carlosnayan/onela-go/executor"
	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/logger"
	testutil "github.com/carlosnayan/onela-go/internal/testing"
)

// Server providers run only when TEST_DATABASE_URL_<PROVIDER> is set.
func TestModel_Providers(t *testing.T) {
	for _, provider := range []string{"sqlite", "mysql", "postgresql", "sqlserver"} {
		t.Run(provider, func(t *testing.T) {
			db, d := testutil.SetupTestDB(t, provider)
			ctx := context.Background()

			const table = "onela_accounts"
			testutil.MustExec(t, db, "DROP TABLE IF EXISTS "+d.QuoteIdentifier(table))
			testutil.DropTablesOnCleanup(t, db, d, table)

			stmt, err := ddl.NewWithDialect(d).CreateTable(ddl.Table{
				Name: table,
				Columns: []ddl.Column{
					{Name: "id", Type: "int", PrimaryKey: true, AutoIncrement: true},
					{Name: "email", Type: "string", Unique: true},
					{Name: "balance", Type: "int"},
				},
			})
			require.NoError(t, err)
			testutil.ApplyScript(t, db, stmt)

			m, err := New(executor.New(db, d, executor.WithLogger(logger.NewLogger(nil, io.Discard))), table)
			require.NoError(t, err)

			_, err = m.InsertBatch(ctx, builder.BatchInsertParams{Rows: []map[string]any{
				{"email": "a@example.com", "balance": 10},
				{"email": "b@example.com", "balance": 20},
				{"email": "c@example.com", "balance": 30},
			}})
			require.NoError(t, err)
			assert.Equal(t, int64(3), testutil.CountRows(t, db, d, table))

			_, err = m.Insert(ctx, builder.InsertParams{Row: map[string]any{"email": "a@example.com", "balance": 0}})
			assert.True(t, errors.IsUniqueConstraint(err), "got %v", err)

			n, err := m.Update(ctx, builder.UpdateParams{
				Update: []builder.UpdateField{builder.Case("balance", "email",
					builder.When("a@example.com", 5, "plus"),
					builder.When("b@example.com", 5, "reduce"),
				)},
				Where: []builder.Condition{builder.In("email", "a@example.com", "b@example.com")},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			total, err := m.Aggregate(ctx, builder.AggregateParams{
				Aggregate: []builder.AggregateItem{{Function: "sum", Field: "balance", Name: "total"}},
			})
			require.NoError(t, err)
			require.Len(t, total, 1)
			assert.EqualValues(t, 60, toInt64(t, total[0]["total"]))

			del, err := m.Builder().BuildDelete(builder.DeleteParams{
				Where:   []builder.Condition{builder.Lt("balance", 20)},
				Configs: builder.Configs{TableName: table},
			})
			require.NoError(t, err)
			testutil.WithTestTransaction(t, db, func(tx driver.Tx) {
				res, err := tx.Exec(ctx, del.SQL, d.Bind(del.Params, del.ParamName)...)
				require.NoError(t, err)
				assert.Equal(t, int64(2), res.RowsAffected())
			})
			assert.Equal(t, int64(3), testutil.CountRows(t, db, d, table))
		})
	}
}

// toInt64 normalizes SUM results, which drivers return as int64, float64,
// []byte or string depending on the column type.
func toInt64(t *testing.T, v any) int64 {
	t.Helper()
	var s string
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case []byte:
		s = string(n)
	case string:
		s = n
	default:
		t.Fatalf("unexpected aggregate type %T", v)
	}
	f, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return int64(f)
}
