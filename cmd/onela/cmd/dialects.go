package cmd

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/onela-go/cli"
	"github.com/carlosnayan/onela-go/internal/dialect"
)

var dialectsCmd = &cli.Command{
	Name:  "dialects",
	Short: "List supported dialects and their aliases",
	Run:   runDialects,
}

func runDialects(args []string) error {
	fmt.Fprintf(stdout, "%-12s %-12s %-10s %s\n", "DIALECT", "DRIVER", "PARAM", "ALIASES")
	for _, name := range dialect.Names() {
		d := dialect.MustNew(name)
		fmt.Fprintf(stdout, "%-12s %-12s %-10s %s\n",
			Success(name), d.GetDriverName(), d.Placeholder(1, ""), strings.Join(dialect.Aliases(name), ", "))
	}
	return nil
}
