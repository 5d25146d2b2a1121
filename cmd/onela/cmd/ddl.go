package cmd

import (
	"fmt"

	"github.com/carlosnayan/onela-go/cli"
	"github.com/carlosnayan/onela-go/ddl"
)

var ddlDialect string

var ddlCmd = &cli.Command{
	Name:  "ddl",
	Short: "Render CREATE / ALTER / DROP statements from a schema file",
	Long: `Renders DDL for one dialect. The file holds a plan:

  create:
    - name: users
      columns:
        - {name: id, type: bigint, primaryKey: true, autoIncrement: true}
        - {name: email, type: string, unique: true}
      indexes:
        - {name: idx_users_email, columns: [email]}
  alter: [...]
  drop: [old_table]

A file with a single table (name, columns, indexes) is accepted as well.`,
	Usage: "onela ddl [--dialect <name>] <schema.json|schema.yaml>",
	Flags: []*cli.Flag{
		{Name: "dialect", Short: "d", Usage: "Target dialect or alias (default: configured provider)", Value: &ddlDialect},
	},
	Run: runDDL,
}

func runDDL(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("ddl expects exactly one schema file")
	}
	name, err := resolveDialect(ddlDialect)
	if err != nil {
		return err
	}
	g, err := ddl.New(name)
	if err != nil {
		return err
	}

	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}
	plan, err := decodePlan(data, format)
	if err != nil {
		return err
	}

	script, err := g.Script(plan)
	if err != nil {
		return err
	}
	fmt.Fprint(stdout, script)
	return nil
}

// decodePlan accepts a Plan or a single Table
func decodePlan(data []byte, format string) (ddl.Plan, error) {
	var plan ddl.Plan
	if err := decode(data, format, &plan); err != nil {
		return plan, err
	}
	if len(plan.Create)+len(plan.Alter)+len(plan.Drop)+len(plan.Indexes) > 0 {
		return plan, nil
	}

	var table ddl.Table
	if err := decode(data, format, &table); err != nil {
		return plan, err
	}
	if table.Name == "" {
		return plan, fmt.Errorf("schema file has no create, alter, drop or indexes entries")
	}
	plan.Create = []ddl.Table{table}
	return plan, nil
}
