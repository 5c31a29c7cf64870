package database

import (
	"context"
	"database/sql"

	"github.com/tidemark/cli/pkg/errors"
)

// SQLConn adapts a *sql.DB to Conn. It never closes the handle.
type SQLConn struct {
	db      *sql.DB
	dialect Dialect
}

var _ Conn = (*SQLConn)(nil)

func NewSQLConn(db *sql.DB, dialect Dialect) *SQLConn {
	return &SQLConn{db: db, dialect: dialect}
}

func (c *SQLConn) Exec(ctx context.Context, query string) (int64, error) {
	var op errors.Op = "database.SQLConn.Exec"
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.E(op, errors.KindConnection, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.E(op, errors.KindConnection, err)
	}
	return n, nil
}

func (c *SQLConn) Quote(value string) (string, error) {
	return c.dialect.QuoteLiteral(value), nil
}

func (c *SQLConn) Query(ctx context.Context, query string) ([]Row, error) {
	var op errors.Op = "database.SQLConn.Query"
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}

	var result []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dest := make([]interface{}, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.E(op, errors.KindConnection, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.E(op, errors.KindConnection, err)
	}
	return result, nil
}
