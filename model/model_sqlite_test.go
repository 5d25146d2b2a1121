package model

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/ddl"
	"github.com/carlosnayan/onela-go/executor"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/logger"
	testutil "github.com/carlosnayan/onela-go/internal/testing"
)

func setupSQLiteUsers(t *testing.T) *Model {
	t.Helper()
	db, d := testutil.SetupTestDB(t, "sqlite")

	script, err := ddl.NewWithDialect(d).Script(ddl.Plan{Create: []ddl.Table{{
		Name: "users",
		Columns: []ddl.Column{
			{Name: "id", Type: "int", PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: "string"},
			{Name: "status", Type: "string"},
			{Name: "age", Type: "int"},
		},
		Indexes: []ddl.Index{{Name: "idx_users_status", Columns: []string{"status"}}},
	}}})
	require.NoError(t, err)
	testutil.ApplyScript(t, db, script)

	exec := executor.New(db, d, executor.WithLogger(logger.NewLogger(nil, io.Discard)))
	m, err := New(exec, "users")
	require.NoError(t, err)
	return m
}

func TestModel_SQLite(t *testing.T) {
	m := setupSQLiteUsers(t)
	ctx := context.Background()

	inserted, err := m.InsertBatch(ctx, builder.BatchInsertParams{
		Rows: []map[string]any{
			{"name": "ana", "status": "active", "age": 30},
			{"name": "bia", "status": "active", "age": 25},
			{"name": "caio", "status": "blocked", "age": 40},
		},
		Returning: []string{"id"},
	})
	require.NoError(t, err)
	assert.Len(t, inserted, 3)

	row, err := m.Insert(ctx, builder.InsertParams{
		Row:       map[string]any{"name": "duda", "status": "", "age": 19},
		Returning: []string{"id", "name"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), row["id"])
	assert.Equal(t, "duda", row["name"])

	list, err := m.FindList(ctx, builder.QueryParams{
		Where:   []builder.Condition{builder.Eq("status", "active")},
		OrderBy: builder.OrderByList{builder.Asc("age")},
		Limit:   []int{0, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Rows, 1)
	assert.Equal(t, "bia", list.Rows[0]["name"])
	assert.Equal(t, int64(25), list.Rows[0]["age"])

	one, err := m.FindOne(ctx, builder.QueryParams{
		Where: []builder.Condition{builder.Gte("age", 40)},
	})
	require.NoError(t, err)
	assert.Equal(t, "caio", one["name"])

	_, err = m.FindOne(ctx, builder.QueryParams{Where: []builder.Condition{builder.Gt("age", 100)}})
	assert.True(t, errors.IsNotFound(err))

	agg, err := m.Aggregate(ctx, builder.AggregateParams{
		Aggregate: []builder.AggregateItem{{Function: "sum", Field: "age"}, {Function: "count"}},
	})
	require.NoError(t, err)
	require.Len(t, agg, 1)
	assert.EqualValues(t, 114, agg[0]["sum_age"])
	assert.EqualValues(t, 4, agg[0]["count"])

	n, err := m.Update(ctx, builder.UpdateParams{
		Update: []builder.UpdateField{builder.Set("status", "blocked"), builder.Incr("age", 1)},
		Where:  []builder.Condition{builder.Eq("name", "bia")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = m.Delete(ctx, builder.DeleteParams{Where: []builder.Condition{builder.Eq("status", "blocked")}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := m.Count(ctx, builder.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestModel_SQLiteTransactionRollback(t *testing.T) {
	m := setupSQLiteUsers(t)
	ctx := context.Background()

	_, err := m.Insert(ctx, builder.InsertParams{Row: map[string]any{"name": "ana", "status": "active", "age": 30}})
	require.NoError(t, err)

	boom := stderrors.New("boom")
	err = m.Transaction(ctx, func(tx *Model) error {
		n, err := tx.Delete(ctx, builder.DeleteParams{Where: []builder.Condition{builder.Eq("name", "ana")}})
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	total, err := m.Count(ctx, builder.QueryParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
