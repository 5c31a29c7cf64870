// Package mssql registers the SQL Server driver, backed by go-mssqldb.
package mssql

import (
	"database/sql"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/pkg/errors"
)

func init() {
	d := &MSSQL{}
	database.Register("sqlserver", d)
	database.Register("mssql", d)
}

type MSSQL struct{}

var _ database.Driver = (*MSSQL)(nil)

func (m *MSSQL) Name() string { return "mssql" }

func (m *MSSQL) Open(dsn string) (*sql.DB, error) {
	var op errors.Op = "mssql.MSSQL.Open"
	if strings.HasPrefix(dsn, "mssql://") {
		dsn = "sqlserver://" + strings.TrimPrefix(dsn, "mssql://")
	}
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}
	return db, nil
}

// QuoteTableName brackets every dot separated part of name.
func (m *MSSQL) QuoteTableName(name string) string {
	parts := strings.SplitN(name, ".", 2)
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}

func (m *MSSQL) QuoteLiteral(value string) string {
	return "N'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func (m *MSSQL) CreateSchemaTableSQL(quotedTable string) string {
	return `IF OBJECT_ID(N'` + strings.ReplaceAll(quotedTable, "'", "''") + `', N'U') IS NULL
CREATE TABLE ` + quotedTable + ` (
	version bigint NOT NULL PRIMARY KEY,
	migration_name nvarchar(100),
	start_time datetime2,
	end_time datetime2,
	breakpoint bit NOT NULL DEFAULT 0
)`
}
