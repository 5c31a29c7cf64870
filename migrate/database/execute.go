package database

import (
	"context"
	"strings"
)

// Execute runs sql on the connection and returns the number of affected
// rows. Trailing semicolons are stripped. In dry-run mode the statement is
// logged and nothing is sent.
func (a *Adapter) Execute(ctx context.Context, sql string) (int64, error) {
	sql = strings.TrimRight(sql, ";")

	if a.conn == nil {
		return 0, ErrNoConnection
	}
	if a.dryRun {
		a.logger.WithField("sql", sql).Info("dry run: statement not executed")
		return 0, nil
	}
	return a.conn.Exec(ctx, sql)
}
