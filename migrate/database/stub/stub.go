// Package stub provides an in-memory database connection that records every
// call made to it. It backs the adapter tests.
package stub

import (
	"context"
	"strings"

	"github.com/tidemark/cli/migrate/database"
)

// Dialect quotes identifiers with double quotes and literals with single
// quotes, doubling embedded quotes.
type Dialect struct{}

func (Dialect) Name() string { return "stub" }

func (Dialect) QuoteTableName(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Dialect) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (d Dialect) CreateSchemaTableSQL(quotedTable string) string {
	return "CREATE TABLE IF NOT EXISTS " + quotedTable + " (version bigint PRIMARY KEY, migration_name varchar(100), start_time timestamp, end_time timestamp, breakpoint smallint NOT NULL DEFAULT 0)"
}

// Conn is a fake database connection.
//
// Rows and QueryErr configure what Query returns, ExecErr and QuoteErr make
// the other calls fail. QuoteFunc replaces the default literal quoting.
type Conn struct {
	Rows         []database.Row
	RowsAffected int64
	QueryErr     error
	ExecErr      error
	QuoteErr     error
	QuoteFunc    func(string) string

	Executed []string
	Queried  []string
	Quoted   []string
}

var _ database.Conn = (*Conn)(nil)

func (c *Conn) Exec(ctx context.Context, query string) (int64, error) {
	c.Executed = append(c.Executed, query)
	if c.ExecErr != nil {
		return 0, c.ExecErr
	}
	return c.RowsAffected, nil
}

func (c *Conn) Quote(value string) (string, error) {
	c.Quoted = append(c.Quoted, value)
	if c.QuoteErr != nil {
		return "", c.QuoteErr
	}
	if c.QuoteFunc != nil {
		return c.QuoteFunc(value), nil
	}
	return Dialect{}.QuoteLiteral(value), nil
}

func (c *Conn) Query(ctx context.Context, query string) ([]database.Row, error) {
	c.Queried = append(c.Queried, query)
	if c.QueryErr != nil {
		return nil, c.QueryErr
	}
	out := make([]database.Row, len(c.Rows))
	copy(out, c.Rows)
	return out, nil
}

// Reset forgets every recorded call.
func (c *Conn) Reset() {
	c.Executed = nil
	c.Queried = nil
	c.Quoted = nil
}

// New returns an adapter using Dialect and a fresh Conn.
func New() (*database.Adapter, *Conn) {
	conn := &Conn{}
	a := database.New(Dialect{}, nil)
	// a *Conn always satisfies database.Conn, so SetOptions cannot fail here
	_ = a.SetOptions(map[string]interface{}{database.OptionConnection: conn})
	return a, conn
}
