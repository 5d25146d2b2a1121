package driver

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig configura o pool de conexões
type PoolConfig struct {
	MaxOpenConns    int           // Número máximo de conexões abertas
	MaxIdleConns    int           // Número máximo de conexões ociosas (MinConns no pgxpool)
	ConnMaxLifetime time.Duration // Tempo máximo de vida de uma conexão
	ConnMaxIdleTime time.Duration // Tempo máximo que uma conexão pode ficar ociosa
}

// DefaultPoolConfig retorna configuração padrão do pool
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// withDefaults preenche campos zerados com os valores padrão
func (c *PoolConfig) withDefaults() *PoolConfig {
	def := DefaultPoolConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.MaxOpenConns <= 0 {
		out.MaxOpenConns = def.MaxOpenConns
	}
	if out.MaxIdleConns <= 0 {
		out.MaxIdleConns = def.MaxIdleConns
	}
	if out.MaxIdleConns > out.MaxOpenConns {
		out.MaxIdleConns = out.MaxOpenConns
	}
	if out.ConnMaxLifetime <= 0 {
		out.ConnMaxLifetime = def.ConnMaxLifetime
	}
	if out.ConnMaxIdleTime <= 0 {
		out.ConnMaxIdleTime = def.ConnMaxIdleTime
	}
	return &out
}

// ConfigurePool configura o pool de conexões do database/sql
func ConfigurePool(db *sql.DB, config *PoolConfig) {
	config = config.withDefaults()
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
}

// ConfigurePgxPool aplica o PoolConfig a um pgxpool.Config
func ConfigurePgxPool(config *pgxpool.Config, poolConfig *PoolConfig) {
	poolConfig = poolConfig.withDefaults()
	config.MaxConns = int32(poolConfig.MaxOpenConns)
	config.MinConns = int32(poolConfig.MaxIdleConns)
	config.MaxConnLifetime = poolConfig.ConnMaxLifetime
	config.MaxConnIdleTime = poolConfig.ConnMaxIdleTime
	config.HealthCheckPeriod = time.Minute
	config.MaxConnLifetimeJitter = poolConfig.ConnMaxLifetime / 10
}

// NewPgxPoolWithConfig cria um novo pool pgx com configuração customizada
func NewPgxPoolWithConfig(ctx context.Context, databaseURL string, poolConfig *PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	ConfigurePgxPool(config, poolConfig)
	return pgxpool.NewWithConfig(ctx, config)
}
