// Package sqlite registers the sqlite driver, backed by the pure Go
// modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/pkg/errors"
)

func init() {
	database.Register("sqlite", &Sqlite{})
}

type Sqlite struct{}

var _ database.Driver = (*Sqlite)(nil)

func (s *Sqlite) Name() string { return "sqlite" }

// Open accepts sqlite://path/to/file.db, sqlite:path and sqlite::memory:.
// An empty path opens an in-memory database.
func (s *Sqlite) Open(dsn string) (*sql.DB, error) {
	var op errors.Op = "sqlite.Sqlite.Open"
	path := FilePath(dsn)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// FilePath strips the URL scheme off dsn.
func FilePath(dsn string) string {
	path := dsn
	switch {
	case strings.HasPrefix(path, "sqlite://"):
		path = strings.TrimPrefix(path, "sqlite://")
	case strings.HasPrefix(path, "sqlite:"):
		path = strings.TrimPrefix(path, "sqlite:")
	}
	if path == "" {
		return ":memory:"
	}
	return path
}

// QuoteTableName quotes name as an identifier. A name qualified with an
// attached database (main.phinxlog) has each part quoted on its own.
func (s *Sqlite) QuoteTableName(name string) string {
	parts := strings.SplitN(name, ".", 2)
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

func (s *Sqlite) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (s *Sqlite) CreateSchemaTableSQL(quotedTable string) string {
	return `CREATE TABLE IF NOT EXISTS ` + quotedTable + ` (
	version bigint NOT NULL PRIMARY KEY,
	migration_name varchar(100),
	start_time timestamp,
	end_time timestamp,
	breakpoint smallint NOT NULL DEFAULT 0
)`
}
