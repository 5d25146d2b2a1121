package dialect

// Dialect representa um dialeto de banco de dados.
// Abstrai as diferenças de placeholder, quoting, paginação e INSERT entre
// MySQL, PostgreSQL, SQLite, SQL Server e Oracle.
type Dialect interface {
	// Name retorna o nome canônico do dialeto (ex: "postgresql", "mysql")
	Name() string

	// Placeholder retorna o marcador do parâmetro de posição index (1-based).
	// MySQL/SQLite: ?, PostgreSQL: $1, SQL Server: @p1, Oracle: :1
	// name é o prefixo dos parâmetros nomeados; só o SQL Server usa.
	Placeholder(index int, name string) string

	// QuoteIdentifier cita um identificador, respeitando qualificação por
	// ponto ("t.id") e deixando "*" intacto.
	QuoteIdentifier(name string) string

	// QuoteString cita uma string literal (usado apenas no DDL)
	QuoteString(value string) string

	// TableAlias compõe "tabela AS alias". Oracle não aceita AS aqui.
	TableAlias(table, alias string) string

	// Pagination monta a cláusula de paginação a partir do índice de
	// placeholder index, devolvendo os parâmetros na ordem em que aparecem.
	Pagination(offset, limit, index int, name string) Pagination

	// OffsetRequiresOrderBy indica que OFFSET só é válido após ORDER BY
	OffsetRequiresOrderBy() bool

	// MaxParams é o máximo de parâmetros vinculados em uma instrução
	MaxParams() int

	// Insert monta um INSERT de uma ou mais linhas. table, columns e
	// returning já vêm citados; rows contém os placeholders de cada linha.
	Insert(table string, columns []string, rows [][]string, returning []string) string

	// Regexp monta o predicado de expressão regular; false quando o banco
	// não tem operador nativo.
	Regexp(column, placeholder string) (string, bool)

	// Bind adapta os parâmetros ao modo de binding do driver
	Bind(params []any, name string) []any

	// MapType mapeia um tipo lógico ("string", "int", ...) para o tipo SQL
	MapType(typ string, isNullable bool) string

	// MapDefaultValue mapeia um default lógico ("now()", "uuid()") para SQL
	MapDefaultValue(value string) string

	// GetAutoIncrementKeyword retorna a palavra-chave para auto incremento
	GetAutoIncrementKeyword() string

	// GetNowFunction retorna a função para obter data/hora atual
	GetNowFunction() string

	// GetDriverName retorna o nome do driver Go para database/sql
	GetDriverName() string
}

// Pagination is a compiled pagination clause.
type Pagination struct {
	SQL    string
	Params []any
	// Next is the placeholder index following the clause.
	Next int
}

// DefaultParamName is the SQL Server named-parameter prefix.
const DefaultParamName = "p"
