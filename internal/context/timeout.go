package contextutil

import (
	"context"
	"time"
)

// Timeouts padrão da camada de execução
var (
	DefaultQueryTimeout       = 5 * time.Second
	DefaultTransactionTimeout = 30 * time.Second
)

// Timeouts agrupa os limites configuráveis por operação
type Timeouts struct {
	Query       time.Duration
	Transaction time.Duration
}

// Defaults retorna os timeouts padrão
func Defaults() Timeouts {
	return Timeouts{Query: DefaultQueryTimeout, Transaction: DefaultTransactionTimeout}
}

// WithTimeout cria um contexto com timeout. Se ctx já tem um deadline mais
// curto, ele é mantido; timeout <= 0 não aplica limite.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// WithQueryTimeout cria um contexto com o timeout de query
func (t Timeouts) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(ctx, t.Query)
}

// WithTransactionTimeout cria um contexto com o timeout de transação
func (t Timeouts) WithTransactionTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return WithTimeout(ctx, t.Transaction)
}
