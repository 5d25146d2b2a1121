package logger

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// LogLevel representa o nível de log
type LogLevel int

const (
	LogLevelQuery LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String retorna a representação em string do nível de log
func (l LogLevel) String() string {
	switch l {
	case LogLevelQuery:
		return "query"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// maxArgLen limita o tamanho de strings exibidas nos logs
const maxArgLen = 100

// Logger escreve logs de queries e mensagens da camada de execução.
// É seguro para uso concorrente.
type Logger struct {
	mu     sync.Mutex
	levels map[LogLevel]bool
	writer io.Writer
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLogger(nil, os.Stdout)
)

// NewLogger cria um novo logger com os níveis informados
// ("query", "info", "warn"/"warning", "error"). Níveis desconhecidos são ignorados.
func NewLogger(levels []string, writer io.Writer) *Logger {
	if writer == nil {
		writer = os.Stdout
	}
	return &Logger{
		levels: ParseLevels(levels),
		writer: writer,
	}
}

// ParseLevels converte nomes de nível no conjunto habilitado
func ParseLevels(levels []string) map[LogLevel]bool {
	out := make(map[LogLevel]bool)
	for _, level := range levels {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "query":
			out[LogLevelQuery] = true
		case "info":
			out[LogLevelInfo] = true
		case "warn", "warning":
			out[LogLevelWarn] = true
		case "error":
			out[LogLevelError] = true
		}
	}
	return out
}

// SetDefaultLogger define o logger padrão
func SetDefaultLogger(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// GetDefaultLogger retorna o logger padrão
func GetDefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetLevels troca os níveis habilitados sem recriar o logger
// (usado pelo reload de configuração).
func (l *Logger) SetLevels(levels []string) {
	parsed := ParseLevels(levels)
	l.mu.Lock()
	l.levels = parsed
	l.mu.Unlock()
}

// Enabled informa se o nível está habilitado
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels[level]
}

// NewOperationID gera o identificador que correlaciona as linhas de uma operação
func NewOperationID() string {
	return uuid.NewString()[:8]
}

func (l *Logger) write(level, opID, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	if opID != "" {
		fmt.Fprintf(l.writer, "[%s] [%s] [%s] %s\n", timestamp, level, opID, msg)
		return
	}
	fmt.Fprintf(l.writer, "[%s] [%s] %s\n", timestamp, level, msg)
}

// Query loga uma query SQL com os argumentos interpolados
func (l *Logger) Query(opID, query string, args []any, duration time.Duration) {
	if !l.Enabled(LogLevelQuery) {
		return
	}
	l.write("QUERY", opID, fmt.Sprintf("%s (took %v)", FormatQuery(query, args), duration))
}

// Rows loga a quantidade de linhas lidas ou afetadas
func (l *Logger) Rows(opID string, n int64, duration time.Duration) {
	if !l.Enabled(LogLevelQuery) {
		return
	}
	l.write("QUERY", opID, fmt.Sprintf("%s rows in %v", humanize.Comma(n), duration))
}

// Info loga uma mensagem informativa
func (l *Logger) Info(format string, args ...any) {
	if !l.Enabled(LogLevelInfo) {
		return
	}
	l.write("INFO", "", fmt.Sprintf(format, args...))
}

// Warn loga um aviso
func (l *Logger) Warn(format string, args ...any) {
	if !l.Enabled(LogLevelWarn) {
		return
	}
	l.write("WARN", "", fmt.Sprintf(format, args...))
}

// Error loga um erro
func (l *Logger) Error(format string, args ...any) {
	if !l.Enabled(LogLevelError) {
		return
	}
	l.write("ERROR", "", fmt.Sprintf(format, args...))
}

// placeholderRe reconhece os marcadores de todos os dialetos:
// ? (MySQL/SQLite), $n (PostgreSQL), @nome (SQL Server), :n (Oracle).
var placeholderRe = regexp.MustCompile(`\?|\$\d+|@[A-Za-z_][A-Za-z0-9_]*\d+|:\d+`)

// FormatQuery substitui os placeholders pelos argumentos formatados.
// Marcadores numerados usam o próprio número; "?" consome os argumentos em ordem.
func FormatQuery(query string, args []any) string {
	if len(args) == 0 {
		return query
	}

	next := 0
	return placeholderRe.ReplaceAllStringFunc(query, func(ph string) string {
		idx := -1
		switch ph[0] {
		case '?':
			idx = next
			next++
		case '$', ':':
			if n, err := strconv.Atoi(ph[1:]); err == nil {
				idx = n - 1
			}
		case '@':
			idx = trailingNumber(ph) - 1
		}
		if idx < 0 || idx >= len(args) {
			return ph
		}
		return formatArg(args[idx])
	})
}

func trailingNumber(s string) int {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0
	}
	return n
}

// formatArg formata um argumento para exibição
// Sanitiza dados sensíveis para prevenir vazamento em logs
func formatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		if isSensitiveData(v) {
			return "'***REDACTED***'"
		}
		if len(v) > maxArgLen {
			return fmt.Sprintf("'%s...' (truncated)", v[:maxArgLen])
		}
		return fmt.Sprintf("'%s'", v)
	case []byte:
		// bytes podem conter dados binários sensíveis
		if len(v) > 0 {
			return fmt.Sprintf("'***REDACTED*** (%s)'", humanize.Bytes(uint64(len(v))))
		}
		return "''"
	case nil:
		return "NULL"
	case sql.NamedArg:
		return formatArg(v.Value)
	case time.Time:
		return "'" + v.Format(time.RFC3339) + "'"
	case fmt.Stringer:
		return formatArg(v.String())
	default:
		str := fmt.Sprintf("%v", v)
		if isSensitiveData(str) {
			return "***REDACTED***"
		}
		return str
	}
}

var sensitiveKeywords = []string{
	"password", "passwd", "pwd",
	"secret", "token", "api_key", "apikey",
	"access_token", "refresh_token", "authorization",
	"credential", "private_key",
	"ssn", "social_security", "credit_card", "cvv",
}

// isSensitiveData verifica se uma string pode conter dados sensíveis
func isSensitiveData(s string) bool {
	s = strings.ToLower(s)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}

	// JWT, Stripe, GitHub, Slack
	if len(s) > 20 && (strings.HasPrefix(s, "eyj") ||
		strings.HasPrefix(s, "sk_") ||
		strings.HasPrefix(s, "pk_") ||
		strings.HasPrefix(s, "ghp_") ||
		strings.HasPrefix(s, "xoxb-") ||
		strings.HasPrefix(s, "xoxp-")) {
		return true
	}

	return false
}

// Funções globais para facilitar uso
func Query(opID, query string, args []any, duration time.Duration) {
	GetDefaultLogger().Query(opID, query, args, duration)
}

func Info(format string, args ...any) {
	GetDefaultLogger().Info(format, args...)
}

func Warn(format string, args ...any) {
	GetDefaultLogger().Warn(format, args...)
}

func Error(format string, args ...any) {
	GetDefaultLogger().Error(format, args...)
}

// SetLogLevels configura os níveis de log do logger padrão
func SetLogLevels(levels []string) {
	GetDefaultLogger().SetLevels(levels)
}

// FileLogger cria um logger que escreve em arquivo. O chamador fecha o
// arquivo retornado.
func FileLogger(filename string, levels []string) (*Logger, io.Closer, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("erro ao abrir arquivo de log: %w", err)
	}
	return NewLogger(levels, file), file, nil
}
