// Package postgres registers the postgres driver, backed by lib/pq.
package postgres

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/pkg/errors"
)

func init() {
	d := &Postgres{}
	database.Register("postgres", d)
	database.Register("postgresql", d)
}

type Postgres struct{}

var _ database.Driver = (*Postgres)(nil)

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Open(dsn string) (*sql.DB, error) {
	var op errors.Op = "postgres.Postgres.Open"
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}
	return db, nil
}

// QuoteTableName quotes name as an identifier. A schema qualified name
// (schema.table) has each part quoted on its own.
func (p *Postgres) QuoteTableName(name string) string {
	parts := strings.SplitN(name, ".", 2)
	for i := range parts {
		parts[i] = pq.QuoteIdentifier(parts[i])
	}
	return strings.Join(parts, ".")
}

func (p *Postgres) QuoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}

func (p *Postgres) CreateSchemaTableSQL(quotedTable string) string {
	return `CREATE TABLE IF NOT EXISTS ` + quotedTable + ` (
	version bigint NOT NULL PRIMARY KEY,
	migration_name varchar(100),
	start_time timestamp,
	end_time timestamp,
	breakpoint smallint NOT NULL DEFAULT 0
)`
}
