package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	onela "github.com/carlosnayan/onela-go"
	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/cli"
	"github.com/carlosnayan/onela-go/model"
)

var (
	execKind = KindSelect
	execList bool
)

var execCmd = &cli.Command{
	Name:  "exec",
	Short: "Build a request and run it against the configured datasource",
	Long: `Builds the request like 'onela build' and runs it through the datasource
of onela.toml / onela.yaml. Results are printed as JSON.

update and delete refuse requests whose conditions are all empty.`,
	Usage: "onela exec [--kind <kind>] [--list] <request.json|request.yaml>",
	Flags: []*cli.Flag{
		{Name: "kind", Short: "k", Usage: "select, count, update, delete, insert, batch-insert or aggregate", Value: &execKind},
		{Name: "list", Usage: "For select: also return the total row count", Value: &execList},
	},
	Run: runExec,
}

func runExec(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exec expects exactly one request file")
	}
	data, format, err := readInput(args[0])
	if err != nil {
		return err
	}
	req, err := decodeRequest(execKind, data, format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := onela.Open(ctx, onela.WithConfigFile(configFile))
	if err != nil {
		return err
	}
	defer client.Close()
	applyLogLevels(nil)

	m, err := client.Model(tableOf(req))
	if err != nil {
		return err
	}
	result, err := run(ctx, m, execKind, req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

// run executes a decoded request through the model
func run(ctx context.Context, m *model.Model, kind string, req any) (any, error) {
	switch p := req.(type) {
	case *builder.QueryParams:
		switch {
		case kind == KindCount:
			n, err := m.Count(ctx, *p)
			return map[string]int64{"total": n}, err
		case execList:
			return m.FindList(ctx, *p)
		}
		return m.Find(ctx, *p)
	case *builder.UpdateParams:
		n, err := m.Update(ctx, *p)
		return map[string]int64{"affected": n}, err
	case *builder.DeleteParams:
		n, err := m.Delete(ctx, *p)
		return map[string]int64{"affected": n}, err
	case *builder.InsertParams:
		return m.Insert(ctx, *p)
	case *builder.BatchInsertParams:
		return m.InsertBatch(ctx, *p)
	case *builder.AggregateParams:
		return m.Aggregate(ctx, *p)
	}
	return nil, fmt.Errorf("unsupported request %T", req)
}
