package cmd

import (
	"fmt"

	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/cli"
)

var (
	buildDialect   string
	buildKind      = KindSelect
	buildJSON      bool
	buildQuoteCols bool
	buildParamName string
)

var buildCmd = &cli.Command{
	Name:  "build",
	Short: "Compile a JSON or YAML request into SQL and parameters",
	Long: `Compiles a request file into parameterized SQL for one dialect.

The request has the shape of the builder params for --kind, for example:

  {"where": [{"key": "age", "operator": ">=", "value": 18}],
   "orderBy": {"created_at": "DESC"},
   "limit": [0, 10],
   "configs": {"tableName": "users"}}

Use "-" to read the request from stdin.`,
	Usage: "onela build [--dialect <name>] [--kind <kind>] [--json] <request.json|request.yaml>",
	Flags: []*cli.Flag{
		{Name: "dialect", Short: "d", Usage: "Target dialect or alias (default: configured provider)", Value: &buildDialect},
		{Name: "kind", Short: "k", Usage: "select, count, update, delete, insert, batch-insert or aggregate", Value: &buildKind},
		{Name: "json", Usage: "Print the result as JSON", Value: &buildJSON},
		{Name: "quote-columns", Usage: "Quote column identifiers", Value: &buildQuoteCols},
		{Name: "param-name", Usage: "Named parameter prefix (SQL Server)", Value: &buildParamName},
	},
	Run: runBuild,
}

func runBuild(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("build expects exactly one request file")
	}
	name, err := resolveDialect(buildDialect)
	if err != nil {
		return err
	}

	var opts []builder.Option
	if buildQuoteCols {
		opts = append(opts, builder.WithQuotedColumns())
	}
	if buildParamName != "" {
		opts = append(opts, builder.WithParamName(buildParamName))
	}
	b, err := builder.New(name, opts...)
	if err != nil {
		return err
	}

	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}
	req, err := decodeRequest(buildKind, data, format)
	if err != nil {
		return err
	}
	built, err := build(b, buildKind, req)
	if err != nil {
		return err
	}

	if buildJSON {
		return printJSON(built)
	}
	fmt.Fprintf(stdout, "%s %s\n", Info("--"), Info(b.Dialect().Name()))
	fmt.Fprintln(stdout, SQL(built.SQL))
	for i, p := range built.Params {
		fmt.Fprintf(stdout, "%s %v\n", Info(fmt.Sprintf("-- $%d =", i+1)), p)
	}
	return nil
}
