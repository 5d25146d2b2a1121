package cmd

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/carlosnayan/onela-go/internal/errors"
)

// runCLI runs the app with fresh flag state and returns its output
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile, verbose = "", false
	buildDialect, buildKind, buildJSON, buildQuoteCols, buildParamName = "", KindSelect, false, false, ""
	ddlDialect = ""
	execKind, execList = KindSelect, false

	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	err := newApp().Run(args)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const selectRequest = `{
  "where": [{"key": "age", "operator": ">=", "value": 18}],
  "orderBy": {"created_at": "DESC"},
  "limit": [0, 10],
  "configs": {"tableName": "users"}
}`

func TestBuild_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "req.json", selectRequest)

	out, err := runCLI(t, "build", "--dialect", "mysql", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT t.* FROM `users` AS t WHERE age >= ? ORDER BY created_at DESC LIMIT ?, ?")
	assert.Contains(t, out, "-- $1 = 18")
	assert.Contains(t, out, "-- $3 = 10")
}

func TestBuild_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "req.json", selectRequest)

	out, err := runCLI(t, "build", "-d", "pg", "--json", path)
	require.NoError(t, err)

	var got struct {
		SQL     string `json:"sql"`
		Params  []any  `json:"params"`
		Dialect string `json:"dialect"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, `SELECT t.* FROM "users" AS t WHERE age >= $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, got.SQL)
	assert.Equal(t, []any{18.0, 10.0, 0.0}, got.Params)
	assert.Equal(t, "postgresql", got.Dialect)
}

func TestBuild_YAMLUpdate(t *testing.T) {
	path := writeFile(t, t.TempDir(), "req.yaml", `
update:
  - {key: views, value: 1, operator: plus}
where:
  - {key: id, value: 7}
configs:
  tableName: posts
`)

	out, err := runCLI(t, "build", "--dialect", "postgresql", "--kind", "update", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `UPDATE \"posts\" SET views = views + $1 WHERE id = $2`)
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "req.json", selectRequest)
	bad := writeFile(t, dir, "bad.json", `{"configs": {"tableName": "users; drop table x"}}`)

	_, err := runCLI(t, "build", "--dialect", "mysql", "--kind", "upsert", path)
	assert.Error(t, err)

	_, err = runCLI(t, "build", "--dialect", "db2", path)
	assert.ErrorIs(t, err, errors.ErrUnsupportedDialect)

	_, err = runCLI(t, "build", "--dialect", "mysql", bad)
	assert.ErrorIs(t, err, errors.ErrInvalidIdentifier)

	_, err = runCLI(t, "build", "--dialect", "mysql")
	assert.Error(t, err)
}

func TestBuild_ReportsAllProblems(t *testing.T) {
	path := writeFile(t, t.TempDir(), "req.json", `{
  "update": [{"key": "views;", "value": 1, "case_field": "id or 1=1", "case_item": [{"case_value": 1, "value": 2}]}],
  "where": [{"key": "id", "value": 7}],
  "configs": {"tableName": "posts"}
}`)

	_, err := runCLI(t, "build", "-d", "mysql", "-k", "update", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidIdentifier)
	assert.Contains(t, err.Error(), "update[0].key")
	assert.Contains(t, err.Error(), "update[0].case_field")
}

func TestBuild_NoDialectWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "req.json", selectRequest)
	t.Chdir(dir)

	_, err := runCLI(t, "build", path)
	assert.Error(t, err)
}

func TestDDL_SingleTable(t *testing.T) {
	path := writeFile(t, t.TempDir(), "users.yaml", `
name: users
columns:
  - {name: id, type: int, primaryKey: true, autoIncrement: true}
  - {name: email, type: string, unique: true}
indexes:
  - {name: idx_users_email, columns: [email]}
`)

	out, err := runCLI(t, "ddl", "--dialect", "sqlite", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE `users` (")
	assert.Contains(t, out, "`id` INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, out, "CREATE INDEX `idx_users_email` ON `users` (`email`);")
}

func TestDDL_EmptyPlan(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.json", `{}`)
	_, err := runCLI(t, "ddl", "--dialect", "mysql", path)
	assert.Error(t, err)
}

func TestDialects(t *testing.T) {
	out, err := runCLI(t, "dialects")
	require.NoError(t, err)
	for _, want := range []string{"mysql", "postgresql", "sqlite", "sqlserver", "oracle", "@p1", "mssql", "pgx"} {
		assert.Contains(t, out, want)
	}
}

func TestExec_SQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.ToSlash(filepath.Join(dir, "app.db"))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := writeFile(t, dir, "onela.toml", "[datasource]\nurl = \"file:"+dbPath+"\"\ndriver = \"sqlite\"\n")
	insert := writeFile(t, dir, "insert.json", `{
  "rows": [{"name": "ana", "age": 30}, {"name": "bia", "age": 17}],
  "returning": ["id"],
  "configs": {"tableName": "users"}
}`)
	count := writeFile(t, dir, "count.json", `{"where": [{"key": "age", "operator": ">=", "value": 18}], "configs": {"tableName": "users"}}`)
	deleteAll := writeFile(t, dir, "delete.json", `{"where": [{"key": "name", "value": ""}], "configs": {"tableName": "users"}}`)

	out, err := runCLI(t, "-c", cfg, "exec", "--kind", "batch-insert", insert)
	require.NoError(t, err)
	var inserted []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &inserted))
	assert.Len(t, inserted, 2)

	out, err = runCLI(t, "--config", cfg, "exec", "-k", "count", count)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 1}`, out)

	out, err = runCLI(t, "--config", cfg, "exec", "--list", count)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"recordsTotal": 1`), out)

	_, err = runCLI(t, "--config", cfg, "exec", "--kind", "delete", deleteAll)
	assert.ErrorIs(t, err, errors.ErrEmptyWhere)
}
