// Package onela generates parameterized SQL for MySQL, PostgreSQL, SQLite,
// SQL Server and Oracle from declarative request descriptions, and runs it.
//
// The pieces can be used on their own:
//   - builder compiles QueryParams, UpdateParams, DeleteParams, InsertParams
//     and AggregateParams into SQL plus an ordered parameter list
//   - ddl renders CREATE / ALTER / DROP statements with the same type mapping
//   - executor binds and runs built statements with timeouts and logging
//   - model is a table-bound CRUD facade
//
// Client wires them to a datasource described by onela.toml or onela.yaml:
//
//	client, err := onela.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	users, err := client.Model("users")
//	list, err := users.FindList(ctx, builder.QueryParams{
//	    Where:   []builder.Condition{builder.Eq("status", "active")},
//	    OrderBy: builder.OrderByList{builder.Desc("created_at")},
//	    Limit:   []int{0, 20},
//	})
//
// CLI:
//
//	onela build --dialect postgresql --kind select request.json
//	onela ddl --dialect mysql schema.yaml
//	onela exec --kind count request.json
//	onela dialects
package onela

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/carlosnayan/onela-go/builder"
	"github.com/carlosnayan/onela-go/executor"
	"github.com/carlosnayan/onela-go/internal/config"
	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/logger"
	"github.com/carlosnayan/onela-go/internal/query"
	"github.com/carlosnayan/onela-go/model"
)

const Version = "0.1.0"

// Client holds a connection pool, the executor bound to it and the
// builder options taken from configuration.
type Client struct {
	cfg         *config.Config
	db          driver.DB
	exec        *executor.Executor
	builderOpts []builder.Option
	logger      *logger.Logger
	logFile     io.Closer
}

type options struct {
	configFile  string
	slowQuery   time.Duration
	maxRows     int
	repeats     *query.RepeatDetector
	builderOpts []builder.Option
}

// Option configures a Client.
type Option func(*options)

// WithConfigFile loads configuration from path instead of searching for
// onela.toml / onela.yaml.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithSlowQueryThreshold logs queries slower than d as warnings.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowQuery = d
	}
}

// WithMaxRows bounds the rows a single query may return.
func WithMaxRows(n int) Option {
	return func(o *options) {
		o.maxRows = n
	}
}

// WithRepeatDetection warns when one statement runs threshold times
// within window.
func WithRepeatDetection(threshold int, window time.Duration) Option {
	return func(o *options) {
		o.repeats = query.NewRepeatDetector(threshold, window)
	}
}

// WithBuilderOptions adds builder options on top of the configured ones.
func WithBuilderOptions(opts ...builder.Option) Option {
	return func(o *options) {
		o.builderOpts = append(o.builderOpts, opts...)
	}
}

func collect(opts []Option) *options {
	o := &options{slowQuery: executor.DefaultSlowQueryThreshold}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) executorOptions(l *logger.Logger) []executor.Option {
	eo := []executor.Option{
		executor.WithLogger(l),
		executor.WithSlowQueryThreshold(o.slowQuery),
	}
	if o.maxRows > 0 {
		eo = append(eo, executor.WithMaxRows(o.maxRows))
	}
	if o.repeats != nil {
		eo = append(eo, executor.WithRepeatDetector(o.repeats))
	}
	return eo
}

// Open loads the configuration and connects to its datasource.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	o := collect(opts)
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}

	l := logger.GetDefaultLogger()
	var logFile io.Closer
	if cfg.LogFile != "" {
		if l, logFile, err = logger.FileLogger(cfg.LogFile, cfg.Log); err != nil {
			return nil, err
		}
	} else if len(cfg.Log) > 0 {
		l.SetLevels(cfg.Log)
	}

	db, d, err := driver.Open(ctx, cfg.DriverOptions())
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}

	execOpts := append(o.executorOptions(l), executor.WithTimeouts(cfg.TimeoutSettings()))
	var bopts []builder.Option
	if cfg.Builder.QuoteColumns {
		bopts = append(bopts, builder.WithQuotedColumns())
	}
	if cfg.Builder.ParamName != "" {
		bopts = append(bopts, builder.WithParamName(cfg.Builder.ParamName))
	}

	return &Client{
		cfg:         cfg,
		db:          db,
		exec:        executor.New(db, d, execOpts...),
		builderOpts: append(bopts, o.builderOpts...),
		logger:      l,
		logFile:     logFile,
	}, nil
}

// FromSQLDB wraps an existing *sql.DB. dialectName is a dialect name or
// alias. Closing the Client closes db.
func FromSQLDB(db *sql.DB, dialectName string, opts ...Option) (*Client, error) {
	d, err := dialect.New(dialectName)
	if err != nil {
		return nil, err
	}
	o := collect(opts)
	l := logger.GetDefaultLogger()
	adapter := driver.NewSQLDB(db)
	return &Client{
		db:          adapter,
		exec:        executor.New(adapter, d, o.executorOptions(l)...),
		builderOpts: o.builderOpts,
		logger:      l,
	}, nil
}

// Dialect returns the canonical dialect name.
func (c *Client) Dialect() string {
	return c.exec.Dialect().Name()
}

// Builder returns a builder for the client's dialect.
func (c *Client) Builder() *builder.Builder {
	return builder.NewWithDialect(c.exec.Dialect(), c.builderOpts...)
}

// Executor returns the executor bound to the pool.
func (c *Client) Executor() *executor.Executor {
	return c.exec
}

// Model returns a Model bound to table.
func (c *Client) Model(table string) (*model.Model, error) {
	return model.New(c.exec, table, c.builderOpts...)
}

// Transaction runs fn within a transaction.
func (c *Client) Transaction(ctx context.Context, fn executor.TransactionFunc) error {
	return c.exec.ExecuteTransaction(ctx, fn)
}

// WatchConfig applies log level changes from the configuration file until
// ctx is done. Only a Client created by Open has a file to watch.
func (c *Client) WatchConfig(ctx context.Context) error {
	if c.cfg == nil || c.cfg.Path() == "" {
		return fmt.Errorf("client has no configuration file")
	}
	return config.Watch(ctx, c.cfg.Path(), func(cfg *config.Config, err error) {
		if err != nil {
			c.logger.Warn("config reload failed: %v", err)
			return
		}
		c.logger.SetLevels(cfg.Log)
		c.logger.Info("log levels set to %v", cfg.Log)
	})
}

// Close closes the connection pool and the log file, if any.
func (c *Client) Close() error {
	err := c.db.Close()
	if c.logFile != nil {
		if cerr := c.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
