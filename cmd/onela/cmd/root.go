package cmd

import (
	"fmt"
	"io"
	"os"

	onela "github.com/carlosnayan/onela-go"
	"github.com/carlosnayan/onela-go/cli"
	"github.com/carlosnayan/onela-go/internal/config"
	"github.com/carlosnayan/onela-go/internal/logger"
)

var (
	configFile string
	verbose    bool

	// stdout receives command output; tests replace it
	stdout io.Writer = os.Stdout
)

// newApp builds the CLI with every command registered
func newApp() *cli.App {
	app := cli.NewApp(
		"onela",
		onela.Version,
		"Cross-database SQL builder: MySQL, PostgreSQL, SQLite, SQL Server, Oracle",
	)
	app.Out = stdout

	app.AddGlobalFlag(&cli.Flag{
		Name:  "config",
		Short: "c",
		Usage: "Path to configuration file (default: onela.toml or onela.yaml)",
		Value: &configFile,
	})
	app.AddGlobalFlag(&cli.Flag{
		Name:  "verbose",
		Usage: "Log queries and transaction events",
		Value: &verbose,
	})

	app.AddCommand(buildCmd)
	app.AddCommand(ddlCmd)
	app.AddCommand(execCmd)
	app.AddCommand(dialectsCmd)
	return app
}

// Execute runs the CLI application
func Execute() error {
	return newApp().Execute()
}

// loadConfig loads the configuration file and applies its log levels
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyLogLevels(cfg.Log)
	return cfg, nil
}

func applyLogLevels(levels []string) {
	if verbose {
		levels = []string{"query", "info", "warn", "error"}
	}
	if len(levels) > 0 {
		logger.SetLogLevels(levels)
	}
}

// resolveDialect returns the --dialect value, falling back to the
// configured provider
func resolveDialect(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg, err := loadConfig(); err == nil {
		return cfg.Datasource.Provider, nil
	}
	return "", fmt.Errorf("--dialect is required when no configuration file is found")
}
