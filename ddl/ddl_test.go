package ddl

import (
	"errors"
	"strings"
	"testing"

	onelaerrors "github.com/carlosnayan/onela-go/internal/errors"
	testutil "github.com/carlosnayan/onela-go/internal/testing"
)

var usersTable = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: "int", PrimaryKey: true, AutoIncrement: true},
		{Name: "email", Type: "string", Unique: true},
		{Name: "name", Type: "string", Nullable: true},
		{Name: "created_at", Type: "datetime", Default: "now()"},
	},
}

func mustGenerator(t *testing.T, name string) *Generator {
	t.Helper()
	g, err := New(name)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCreateTable(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
	}{
		{"postgresql", `CREATE TABLE "users" (
  "id" SERIAL NOT NULL,
  "email" TEXT NOT NULL UNIQUE,
  "name" TEXT,
  "created_at" TIMESTAMP NOT NULL DEFAULT NOW(),
  PRIMARY KEY ("id")
);`},
		{"mysql", "CREATE TABLE `users` (\n" +
			"  `id` INT NOT NULL AUTO_INCREMENT,\n" +
			"  `email` VARCHAR(191) NOT NULL UNIQUE,\n" +
			"  `name` VARCHAR(191),\n" +
			"  `created_at` DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,\n" +
			"  PRIMARY KEY (`id`)\n" +
			");"},
		{"sqlite", "CREATE TABLE `users` (\n" +
			"  `id` INTEGER PRIMARY KEY AUTOINCREMENT,\n" +
			"  `email` TEXT NOT NULL UNIQUE,\n" +
			"  `name` TEXT,\n" +
			"  `created_at` TEXT NOT NULL DEFAULT (datetime('now'))\n" +
			");"},
		{"sqlserver", `CREATE TABLE [users] (
  [id] INT IDENTITY(1,1),
  [email] NVARCHAR(255) NOT NULL UNIQUE,
  [name] NVARCHAR(255),
  [created_at] DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
  PRIMARY KEY ([id])
);`},
		{"oracle", `CREATE TABLE "users" (
  "id" NUMBER(10) GENERATED BY DEFAULT AS IDENTITY,
  "email" VARCHAR2(255) NOT NULL UNIQUE,
  "name" VARCHAR2(255),
  "created_at" TIMESTAMP NOT NULL DEFAULT SYSTIMESTAMP,
  PRIMARY KEY ("id")
);`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			got, err := mustGenerator(t, tt.dialect).CreateTable(usersTable)
			if err != nil {
				t.Fatal(err)
			}
			if diff := testutil.Diff(got, tt.want); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestCreateTable_Errors(t *testing.T) {
	g := mustGenerator(t, "postgresql")
	tests := []struct {
		name  string
		table Table
		want  error
	}{
		{"bad table", Table{Name: "users;", Columns: []Column{{Name: "id", Type: "int"}}}, onelaerrors.ErrInvalidIdentifier},
		{"bad column", Table{Name: "users", Columns: []Column{{Name: "id int); DROP TABLE x; --", Type: "int"}}}, onelaerrors.ErrInvalidIdentifier},
		{"bad type", Table{Name: "users", Columns: []Column{{Name: "id", Type: "int); DROP TABLE x"}}}, onelaerrors.ErrInvalidIdentifier},
		{"bad default", Table{Name: "users", Columns: []Column{{Name: "id", Type: "int", Default: "1; DROP TABLE x"}}}, onelaerrors.ErrUnsafeFormatValue},
		{"no columns", Table{Name: "users"}, onelaerrors.ErrNoColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.CreateTable(tt.table); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAlterAndDrop(t *testing.T) {
	pg := mustGenerator(t, "postgresql")
	adds, err := pg.AddColumns("users", []Column{{Name: "age", Type: "int", Nullable: true}, {Name: "status", Type: "VARCHAR(20)", Default: "'active'"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		`ALTER TABLE "users" ADD COLUMN "age" INTEGER;`,
		`ALTER TABLE "users" ADD COLUMN "status" VARCHAR(20) NOT NULL DEFAULT 'active';`,
	}
	if diff := testutil.Diff(adds, want); diff != "" {
		t.Error(diff)
	}

	ms := mustGenerator(t, "mssql")
	adds, err = ms.AddColumns("users", []Column{{Name: "age", Type: "int", Nullable: true}})
	if err != nil {
		t.Fatal(err)
	}
	if diff := testutil.Diff(adds, []string{"ALTER TABLE [users] ADD [age] INT;"}); diff != "" {
		t.Error(diff)
	}

	drops, err := pg.DropColumns("users", []string{"age"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := testutil.Diff(drops, []string{`ALTER TABLE "users" DROP COLUMN "age";`}); diff != "" {
		t.Error(diff)
	}

	stmt, _ := pg.DropTable("users", true)
	if stmt != `DROP TABLE IF EXISTS "users";` {
		t.Errorf("DropTable = %s", stmt)
	}
	stmt, _ = mustGenerator(t, "oracle").DropTable("users", true)
	if stmt != `DROP TABLE "users";` {
		t.Errorf("oracle DropTable = %s", stmt)
	}
}

func TestIndexes(t *testing.T) {
	idx := Index{Name: "users_email_idx", Table: "users", Columns: []string{"email", "tenant_id"}, Unique: true}

	got, err := mustGenerator(t, "mysql").CreateIndex(idx)
	if err != nil {
		t.Fatal(err)
	}
	if want := "CREATE UNIQUE INDEX `users_email_idx` ON `users` (`email`, `tenant_id`);"; got != want {
		t.Errorf("CreateIndex = %s, want %s", got, want)
	}

	got, _ = mustGenerator(t, "mysql").DropIndex("users_email_idx", "users")
	if want := "DROP INDEX `users_email_idx` ON `users`;"; got != want {
		t.Errorf("DropIndex = %s, want %s", got, want)
	}
	got, _ = mustGenerator(t, "postgresql").DropIndex("users_email_idx", "")
	if want := `DROP INDEX "users_email_idx";`; got != want {
		t.Errorf("DropIndex = %s, want %s", got, want)
	}
	if _, err := mustGenerator(t, "sqlserver").DropIndex("users_email_idx", ""); !errors.Is(err, onelaerrors.ErrInvalidIdentifier) {
		t.Errorf("sqlserver DropIndex without table error = %v", err)
	}
}

func TestScript(t *testing.T) {
	plan := Plan{
		Create: []Table{{
			Name: "tokens",
			Columns: []Column{
				{Name: "id", Type: "uuid", PrimaryKey: true, Default: "uuid()"},
				{Name: "user_id", Type: "bigint"},
			},
			Indexes: []Index{{Name: "tokens_user_idx", Columns: []string{"user_id"}}},
		}},
		Drop: []string{"legacy_tokens"},
	}
	got, err := mustGenerator(t, "pg").Script(plan)
	if err != nil {
		t.Fatal(err)
	}
	want := `CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE "tokens" (
  "id" UUID NOT NULL DEFAULT gen_random_uuid(),
  "user_id" BIGINT NOT NULL,
  PRIMARY KEY ("id")
);

CREATE INDEX "tokens_user_idx" ON "tokens" ("user_id");
DROP TABLE IF EXISTS "legacy_tokens";
`
	if diff := testutil.Diff(got, want); diff != "" {
		t.Error(diff)
	}
	if strings.Count(got, "CREATE TABLE") != 1 {
		t.Errorf("script = %s", got)
	}
}
