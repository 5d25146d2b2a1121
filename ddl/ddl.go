// Package ddl generates CREATE / ALTER / DROP statements for the dialects
// supported by the builder. It shares the builder's identifier validation
// and per-dialect type mapping; it never executes anything.
package ddl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/errors"
	"github.com/carlosnayan/onela-go/internal/identifier"
)

// Column describes one table column. Type is a logical type ("string",
// "int", "bigint", "boolean", "datetime", "float", "decimal", "json",
// "bytes", "uuid") or a native SQL type. Default accepts now(), uuid() and
// autoincrement() besides literal SQL.
type Column struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Nullable      bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	PrimaryKey    bool   `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	Unique        bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	AutoIncrement bool   `json:"autoIncrement,omitempty" yaml:"autoIncrement,omitempty"`
	Default       string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Index describes an index on Table.
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Table   string   `json:"table" yaml:"table"`
	Columns []string `json:"columns" yaml:"columns"`
	Unique  bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// Table describes a table to create, with its indexes.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
	Indexes []Index  `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

// Alteration adds and drops columns of an existing table.
type Alteration struct {
	Table       string   `json:"table" yaml:"table"`
	AddColumns  []Column `json:"addColumns,omitempty" yaml:"addColumns,omitempty"`
	DropColumns []string `json:"dropColumns,omitempty" yaml:"dropColumns,omitempty"`
}

// Plan is a batch of schema changes rendered by Generator.Script.
type Plan struct {
	Create  []Table      `json:"create,omitempty" yaml:"create,omitempty"`
	Alter   []Alteration `json:"alter,omitempty" yaml:"alter,omitempty"`
	Drop    []string     `json:"drop,omitempty" yaml:"drop,omitempty"`
	Indexes []Index      `json:"indexes,omitempty" yaml:"indexes,omitempty"`
}

var (
	safeType      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\([0-9, A-Za-z]*\))?$`)
	unsafeDefault = regexp.MustCompile(`;|--|/\*|\*/`)
)

// Generator renders DDL for one dialect.
type Generator struct {
	d dialect.Dialect
}

// New creates a Generator for the named dialect or alias.
func New(dialectName string) (*Generator, error) {
	d, err := dialect.New(dialectName)
	if err != nil {
		return nil, err
	}
	return &Generator{d: d}, nil
}

// NewWithDialect creates a Generator for d.
func NewWithDialect(d dialect.Dialect) *Generator {
	return &Generator{d: d}
}

func (g *Generator) quote(name string) (string, error) {
	if _, err := identifier.Validate(name); err != nil {
		return "", err
	}
	return g.d.QuoteIdentifier(name), nil
}

func (g *Generator) quoteAll(names []string) (string, error) {
	out := make([]string, len(names))
	for i, n := range names {
		q, err := g.quote(n)
		if err != nil {
			return "", err
		}
		out[i] = q
	}
	return strings.Join(out, ", "), nil
}

// columnType resolves the SQL type of col, folding in auto increment
// where the dialect expresses it as part of the type.
func (g *Generator) columnType(col Column) (string, error) {
	if !safeType.MatchString(col.Type) {
		return "", errors.Newf(errors.ErrInvalidIdentifier, "column %s: type %q", col.Name, col.Type)
	}
	typ := g.d.MapType(col.Type, col.Nullable)
	if !col.AutoIncrement {
		return typ, nil
	}
	switch g.d.Name() {
	case "postgresql":
		if strings.EqualFold(col.Type, "bigint") {
			return "BIGSERIAL", nil
		}
		return g.d.GetAutoIncrementKeyword(), nil
	case "sqlite":
		return "INTEGER", nil
	}
	return typ, nil
}

// columnDef renders "<name> <type> [NOT NULL] [DEFAULT] [UNIQUE]"; inline
// reports whether the primary key was emitted on the column itself.
func (g *Generator) columnDef(col Column) (def string, inline bool, err error) {
	name, err := g.quote(col.Name)
	if err != nil {
		return "", false, err
	}
	typ, err := g.columnType(col)
	if err != nil {
		return "", false, err
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(typ)

	if col.AutoIncrement {
		switch g.d.Name() {
		case "sqlite":
			// AUTOINCREMENT is only legal on an inline INTEGER PRIMARY KEY
			sb.WriteString(" PRIMARY KEY " + g.d.GetAutoIncrementKeyword())
			return sb.String(), true, nil
		case "mysql":
			sb.WriteString(" NOT NULL " + g.d.GetAutoIncrementKeyword())
			return sb.String(), false, nil
		case "sqlserver", "oracle":
			sb.WriteString(" " + g.d.GetAutoIncrementKeyword())
			return sb.String(), false, nil
		}
	}

	if !col.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		if unsafeDefault.MatchString(col.Default) {
			return "", false, errors.Newf(errors.ErrUnsafeFormatValue, "column %s: default %q", col.Name, col.Default)
		}
		if def := g.d.MapDefaultValue(col.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
	}
	if col.Unique && !col.PrimaryKey {
		sb.WriteString(" UNIQUE")
	}
	return sb.String(), false, nil
}

// CreateTable renders CREATE TABLE for t. Indexes of t are not included;
// see CreateIndex and Script.
func (g *Generator) CreateTable(t Table) (string, error) {
	table, err := g.quote(t.Name)
	if err != nil {
		return "", err
	}
	if len(t.Columns) == 0 {
		return "", errors.Newf(errors.ErrNoColumns, "table %s", t.Name)
	}

	var defs, pks []string
	inlinePK := false
	for _, col := range t.Columns {
		def, inline, err := g.columnDef(col)
		if err != nil {
			return "", err
		}
		defs = append(defs, "  "+def)
		inlinePK = inlinePK || inline
		if col.PrimaryKey && !inline {
			pks = append(pks, col.Name)
		}
	}
	if len(pks) > 0 && !inlinePK {
		quoted, err := g.quoteAll(pks)
		if err != nil {
			return "", err
		}
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", quoted))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", table, strings.Join(defs, ",\n")), nil
}

// AddColumns renders one ALTER TABLE ... ADD statement per column.
func (g *Generator) AddColumns(tableName string, cols []Column) ([]string, error) {
	table, err := g.quote(tableName)
	if err != nil {
		return nil, err
	}
	keyword := "ADD COLUMN"
	if g.d.Name() == "sqlserver" || g.d.Name() == "oracle" {
		keyword = "ADD"
	}
	var out []string
	for _, col := range cols {
		def, _, err := g.columnDef(col)
		if err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("ALTER TABLE %s %s %s;", table, keyword, def))
	}
	return out, nil
}

// DropColumns renders one ALTER TABLE ... DROP COLUMN statement per column.
func (g *Generator) DropColumns(tableName string, cols []string) ([]string, error) {
	table, err := g.quote(tableName)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range cols {
		col, err := g.quote(c)
		if err != nil {
			return nil, err
		}
		out = append(out, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, col))
	}
	return out, nil
}

// DropTable renders DROP TABLE. Oracle has no IF EXISTS; ifExists is
// ignored there.
func (g *Generator) DropTable(name string, ifExists bool) (string, error) {
	table, err := g.quote(name)
	if err != nil {
		return "", err
	}
	if ifExists && g.d.Name() != "oracle" {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", table), nil
	}
	return fmt.Sprintf("DROP TABLE %s;", table), nil
}

// CreateIndex renders CREATE [UNIQUE] INDEX.
func (g *Generator) CreateIndex(idx Index) (string, error) {
	name, err := g.quote(idx.Name)
	if err != nil {
		return "", err
	}
	table, err := g.quote(idx.Table)
	if err != nil {
		return "", err
	}
	if len(idx.Columns) == 0 {
		return "", errors.Newf(errors.ErrNoColumns, "index %s", idx.Name)
	}
	cols, err := g.quoteAll(idx.Columns)
	if err != nil {
		return "", err
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);", unique, name, table, cols), nil
}

// DropIndex renders DROP INDEX. MySQL and SQL Server scope index names to
// a table, so tableName is required there.
func (g *Generator) DropIndex(name, tableName string) (string, error) {
	idx, err := g.quote(name)
	if err != nil {
		return "", err
	}
	switch g.d.Name() {
	case "mysql", "sqlserver":
		table, err := g.quote(tableName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("DROP INDEX %s ON %s;", idx, table), nil
	}
	return fmt.Sprintf("DROP INDEX %s;", idx), nil
}

func usesRandomUUID(p Plan) bool {
	check := func(cols []Column) bool {
		for _, c := range cols {
			if strings.HasPrefix(strings.ToLower(c.Default), "uuid") {
				return true
			}
		}
		return false
	}
	for _, t := range p.Create {
		if check(t.Columns) {
			return true
		}
	}
	for _, a := range p.Alter {
		if check(a.AddColumns) {
			return true
		}
	}
	return false
}

// Script renders a whole plan: tables, alterations, indexes, then drops.
func (g *Generator) Script(p Plan) (string, error) {
	var sb strings.Builder

	// gen_random_uuid() lives in pgcrypto before PostgreSQL 13
	if g.d.Name() == "postgresql" && usesRandomUUID(p) {
		sb.WriteString("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\";\n\n")
	}

	var indexes []Index
	for _, t := range p.Create {
		stmt, err := g.CreateTable(t)
		if err != nil {
			return "", err
		}
		sb.WriteString(stmt)
		sb.WriteString("\n\n")
		for _, idx := range t.Indexes {
			if idx.Table == "" {
				idx.Table = t.Name
			}
			indexes = append(indexes, idx)
		}
	}

	for _, a := range p.Alter {
		adds, err := g.AddColumns(a.Table, a.AddColumns)
		if err != nil {
			return "", err
		}
		drops, err := g.DropColumns(a.Table, a.DropColumns)
		if err != nil {
			return "", err
		}
		for _, stmt := range append(adds, drops...) {
			sb.WriteString(stmt)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	for _, idx := range append(indexes, p.Indexes...) {
		stmt, err := g.CreateIndex(idx)
		if err != nil {
			return "", err
		}
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}

	for _, name := range p.Drop {
		stmt, err := g.DropTable(name, true)
		if err != nil {
			return "", err
		}
		sb.WriteString(stmt)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}
