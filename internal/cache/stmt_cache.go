package cache

import (
	"context"
	"database/sql"
	"sync"
	"time"
)

// Preparer é satisfeito por *sql.DB, *sql.Conn e *sql.Tx
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// StmtCache é um cache de prepared statements indexado pelo SQL, seguro
// para uso concorrente. Statements removidos (LRU, TTL ou Close) são
// fechados quando o último usuário os libera.
type StmtCache struct {
	mu      sync.Mutex
	stmts   map[string]*CachedStmt
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// CachedStmt representa um prepared statement em cache
type CachedStmt struct {
	Stmt        *sql.Stmt
	LastUsed    time.Time
	AccessCount int64

	refs    int
	evicted bool
}

// NewStmtCache cria um novo cache de prepared statements
func NewStmtCache(maxSize int, ttl time.Duration) *StmtCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &StmtCache{
		stmts:   make(map[string]*CachedStmt),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// DefaultStmtCache retorna um cache com configurações padrão
func DefaultStmtCache() *StmtCache {
	return NewStmtCache(100, 5*time.Minute)
}

// Contains informa se a query tem um statement válido em cache
func (c *StmtCache) Contains(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.stmts[query]
	return ok && !c.expired(cached)
}

func (c *StmtCache) acquire(query string) (*CachedStmt, bool) {
	cached, ok := c.stmts[query]
	if !ok {
		return nil, false
	}
	if c.expired(cached) {
		c.remove(query)
		return nil, false
	}
	cached.LastUsed = c.now()
	cached.AccessCount++
	cached.refs++
	return cached, true
}

// Prepare retorna o statement em cache ou prepara um novo com p, junto com
// a função release que o chamador deve chamar quando terminar de usá-lo.
// Um statement removido do cache só é fechado depois do último release.
// A preparação acontece fora do lock; se outra goroutine guardou a mesma
// query nesse meio tempo, o statement recém-preparado é descartado.
func (c *StmtCache) Prepare(ctx context.Context, p Preparer, query string) (*sql.Stmt, func(), error) {
	c.mu.Lock()
	cached, ok := c.acquire(query)
	c.mu.Unlock()
	if ok {
		return cached.Stmt, c.releaser(cached), nil
	}

	stmt, err := p.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.acquire(query); ok {
		stmt.Close()
		return existing.Stmt, c.releaser(existing), nil
	}
	cached = c.put(query, stmt)
	cached.refs++
	return stmt, c.releaser(cached), nil
}

func (c *StmtCache) releaser(cached *CachedStmt) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			cached.refs--
			if cached.evicted && cached.refs == 0 {
				cached.Stmt.Close()
			}
		})
	}
}

// Put adiciona um statement ao cache, substituindo o anterior
func (c *StmtCache) Put(query string, stmt *sql.Stmt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stmts[query]; ok {
		c.remove(query)
	}
	c.put(query, stmt)
}

func (c *StmtCache) put(query string, stmt *sql.Stmt) *CachedStmt {
	if len(c.stmts) >= c.maxSize {
		c.evictLRU()
	}
	cached := &CachedStmt{
		Stmt:        stmt,
		LastUsed:    c.now(),
		AccessCount: 1,
	}
	c.stmts[query] = cached
	return cached
}

func (c *StmtCache) expired(s *CachedStmt) bool {
	return c.ttl > 0 && c.now().Sub(s.LastUsed) > c.ttl
}

// remove tira a query do cache. O statement é fechado agora se ninguém o
// usa, senão no último release.
func (c *StmtCache) remove(query string) {
	cached, ok := c.stmts[query]
	if !ok {
		return
	}
	delete(c.stmts, query)
	cached.evicted = true
	if cached.refs == 0 && cached.Stmt != nil {
		cached.Stmt.Close()
	}
}

// evictLRU remove o item menos usado recentemente
func (c *StmtCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, s := range c.stmts {
		if first || s.LastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = s.LastUsed
			first = false
		}
	}

	if !first {
		c.remove(oldestKey)
	}
}

// Cleanup remove statements expirados do cache
func (c *StmtCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, s := range c.stmts {
		if c.expired(s) {
			c.remove(key)
		}
	}
}

// StartCleanup inicia uma goroutine que limpa o cache periodicamente
func (c *StmtCache) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

// Close fecha e remove todos os statements
func (c *StmtCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.stmts {
		c.remove(key)
	}
}

// Stats retorna estatísticas do cache
func (c *StmtCache) Stats() (size int, totalAccesses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	size = len(c.stmts)
	for _, s := range c.stmts {
		totalAccesses += s.AccessCount
	}
	return size, totalAccesses
}
