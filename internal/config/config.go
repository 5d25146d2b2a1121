package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/carlosnayan/onela-go/internal/cache"
	contextutil "github.com/carlosnayan/onela-go/internal/context"
	"github.com/carlosnayan/onela-go/internal/dialect"
	"github.com/carlosnayan/onela-go/internal/driver"
)

// StmtCacheTTL é o tempo de vida dos prepared statements em cache
var StmtCacheTTL = 5 * time.Minute

// FileNames são os arquivos procurados por Load, em ordem
var FileNames = []string{"onela.toml", "onela.yaml", "onela.yml"}

// Config representa a configuração completa do onela
type Config struct {
	Datasource *DatasourceConfig `toml:"datasource" yaml:"datasource"`
	Pool       *PoolConfig       `toml:"pool" yaml:"pool"`
	Builder    *BuilderConfig    `toml:"builder" yaml:"builder"`
	Timeouts   *TimeoutsConfig   `toml:"timeouts" yaml:"timeouts"`
	Log        []string          `toml:"log,omitempty" yaml:"log,omitempty"` // Níveis de log: query, info, warn, error
	LogFile    string            `toml:"log_file,omitempty" yaml:"log_file,omitempty"`

	path string
}

// DatasourceConfig configura a fonte de dados
type DatasourceConfig struct {
	Provider string `toml:"provider" yaml:"provider"` // mysql, postgresql, sqlite, sqlserver, oracle ou alias
	URL      string `toml:"url" yaml:"url"`           // pode usar env("DATABASE_URL") ou ${DATABASE_URL}
	Driver   string `toml:"driver" yaml:"driver"`     // driver database/sql ou "pgxpool"
}

// PoolConfig configura o pool de conexões
type PoolConfig struct {
	MaxOpenConns    int      `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `toml:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	StmtCacheSize   int      `toml:"stmt_cache_size" yaml:"stmt_cache_size"` // 0 desativa o cache de statements
}

// BuilderConfig configura a geração de SQL
type BuilderConfig struct {
	QuoteColumns bool   `toml:"quote_columns" yaml:"quote_columns"`
	ParamName    string `toml:"param_name" yaml:"param_name"` // prefixo dos parâmetros nomeados (SQL Server)
}

// TimeoutsConfig configura os timeouts de execução
type TimeoutsConfig struct {
	Query       Duration `toml:"query" yaml:"query"`
	Transaction Duration `toml:"transaction" yaml:"transaction"`
}

// Duration aceita strings como "5s" ou "1m30s" em TOML e YAML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load carrega a configuração. Sem configPath, procura onela.toml,
// onela.yaml ou onela.yml subindo a partir do diretório atual.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	if configPath == "" {
		found, err := Find()
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler %s: %w", filepath.Base(configPath), err)
	}

	cfg, err := Parse(data, formatOf(configPath))
	if err != nil {
		return nil, fmt.Errorf("erro ao parsear %s: %w", filepath.Base(configPath), err)
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse decodifica data no formato "toml" ou "yaml", expande variáveis de
// ambiente e valida o resultado.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case "toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("formato de configuração desconhecido: %q", format)
	}

	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuração inválida: %w", err)
	}
	return &cfg, nil
}

// Find procura o arquivo de configuração subindo os diretórios
func Find() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("erro ao obter diretório atual: %w", err)
	}

	dir := wd
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s não encontrado", strings.Join(FileNames, ", "))
		}
		dir = parent
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// loadDotEnv carrega o primeiro .env encontrado subindo os diretórios.
// Variáveis já definidas no ambiente não são sobrescritas.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		_ = godotenv.Load()
		return
	}
	dir := wd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// expandEnvVars expande variáveis de ambiente no formato ${VAR}, $VAR ou env("VAR")
func (c *Config) expandEnvVars() {
	if c.Datasource != nil {
		c.Datasource.URL = expandString(c.Datasource.URL)
		c.Datasource.Provider = expandString(c.Datasource.Provider)
	}
	if c.LogFile != "" {
		c.LogFile = expandString(c.LogFile)
	}
}

// expandString expande variáveis de ambiente em uma string
// Suporta: ${VAR}, $VAR, env("VAR") e env('VAR')
func expandString(s string) string {
	for {
		var start int
		var endQuote string

		if idx := strings.Index(s, `env("`); idx != -1 {
			start = idx
			endQuote = `")`
		} else if idx := strings.Index(s, `env('`); idx != -1 {
			start = idx
			endQuote = `')`
		} else {
			break
		}

		end := strings.Index(s[start+5:], endQuote)
		if end == -1 {
			break
		}
		end += start + 5

		s = s[:start] + os.Getenv(s[start+5:end]) + s[end+2:]
	}

	return os.ExpandEnv(s)
}

// Validate preenche os valores padrão e valida a configuração
func (c *Config) Validate() error {
	if c.Datasource == nil {
		return fmt.Errorf("datasource é obrigatório")
	}
	if c.Datasource.URL == "" {
		return fmt.Errorf("datasource.url é obrigatório (use env(\"DATABASE_URL\") ou ${DATABASE_URL})")
	}

	provider := c.Datasource.Provider
	if provider == "" {
		provider = driver.DetectProvider(c.Datasource.URL)
		if provider == "" {
			return fmt.Errorf("datasource.provider é obrigatório quando não pode ser detectado pela url")
		}
	}
	canonical, err := dialect.Resolve(provider)
	if err != nil {
		return err
	}
	c.Datasource.Provider = canonical

	if c.Pool == nil {
		c.Pool = &PoolConfig{}
	}
	def := driver.DefaultPoolConfig()
	if c.Pool.MaxOpenConns <= 0 {
		c.Pool.MaxOpenConns = def.MaxOpenConns
	}
	if c.Pool.MaxIdleConns <= 0 {
		c.Pool.MaxIdleConns = def.MaxIdleConns
	}
	if c.Pool.ConnMaxLifetime.Duration <= 0 {
		c.Pool.ConnMaxLifetime.Duration = def.ConnMaxLifetime
	}
	if c.Pool.ConnMaxIdleTime.Duration <= 0 {
		c.Pool.ConnMaxIdleTime.Duration = def.ConnMaxIdleTime
	}
	if c.Pool.StmtCacheSize < 0 {
		return fmt.Errorf("pool.stmt_cache_size não pode ser negativo")
	}

	if c.Builder == nil {
		c.Builder = &BuilderConfig{}
	}

	if c.Timeouts == nil {
		c.Timeouts = &TimeoutsConfig{}
	}
	if c.Timeouts.Query.Duration <= 0 {
		c.Timeouts.Query.Duration = contextutil.DefaultQueryTimeout
	}
	if c.Timeouts.Transaction.Duration <= 0 {
		c.Timeouts.Transaction.Duration = contextutil.DefaultTransactionTimeout
	}

	return nil
}

// Path retorna o arquivo de onde a configuração foi carregada
func (c *Config) Path() string {
	return c.path
}

// GetDatabaseURL retorna a URL do banco de dados (já expandida)
func (c *Config) GetDatabaseURL() string {
	if c.Datasource != nil {
		return c.Datasource.URL
	}
	return ""
}

// DriverOptions converte a configuração nas opções de conexão
func (c *Config) DriverOptions() driver.Options {
	opts := driver.Options{
		Provider: c.Datasource.Provider,
		URL:      c.Datasource.URL,
		Driver:   c.Datasource.Driver,
		Pool: &driver.PoolConfig{
			MaxOpenConns:    c.Pool.MaxOpenConns,
			MaxIdleConns:    c.Pool.MaxIdleConns,
			ConnMaxLifetime: c.Pool.ConnMaxLifetime.Duration,
			ConnMaxIdleTime: c.Pool.ConnMaxIdleTime.Duration,
		},
	}
	if c.Pool.StmtCacheSize > 0 {
		opts.StmtCache = cache.NewStmtCache(c.Pool.StmtCacheSize, StmtCacheTTL)
	}
	return opts
}

// TimeoutSettings retorna os timeouts de execução
func (c *Config) TimeoutSettings() contextutil.Timeouts {
	return contextutil.Timeouts{
		Query:       c.Timeouts.Query.Duration,
		Transaction: c.Timeouts.Transaction.Duration,
	}
}
