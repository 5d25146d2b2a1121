package executor

import (
	"strings"
	"time"
)

// detectQueryType detecta o tipo de query SQL (SELECT, INSERT, UPDATE, DELETE)
func detectQueryType(query string) string {
	upper := strings.ToUpper(strings.TrimSpace(query))

	for _, kind := range []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP"} {
		if strings.HasPrefix(upper, kind) {
			return kind
		}
	}
	return "UNKNOWN"
}

// logQuery loga a query, o tipo e avisa quando ela passa do limite de lentidão
func (e *Executor) logQuery(opID, query string, args []any, duration time.Duration) {
	e.logger.Query(opID, query, args, duration)

	queryType := detectQueryType(query)
	e.logger.Info("%s executed in %v", queryType, duration)

	if e.slow > 0 && duration > e.slow {
		e.logger.Warn("Slow query detected [%s]: %s took %v", opID, queryType, duration)
	}

	if e.repeats != nil {
		if alert, ok := e.repeats.Record(query); ok {
			e.logger.Warn("[%s] %s", opID, alert)
		}
	}
}

func (e *Executor) logFailure(opID, query string, args []any, err error) {
	e.logger.Error("[%s] %s failed: %v", opID, detectQueryType(query), err)
}
