package migrations

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tidemark/cli/internal/statestore"
	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/pkg/errors"
)

const timeLayout = "2006-01-02 15:04:05"

// MigrationStateStoreLogTable keeps migration state in the adapter's
// schema-log table. Every write goes through the adapter, so dry-run mode
// turns writes into logged statements.
type MigrationStateStoreLogTable struct {
	adapter database.SchemaAdapter
}

var _ statestore.MigrationsStateStore = (*MigrationStateStoreLogTable)(nil)

func NewMigrationStateStoreLogTable(adapter database.SchemaAdapter) *MigrationStateStoreLogTable {
	return &MigrationStateStoreLogTable{adapter}
}

func (m *MigrationStateStoreLogTable) PrepareMigrationsStateStore(ctx context.Context) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.PrepareMigrationsStateStore"
	query := m.adapter.Dialect().CreateSchemaTableSQL(m.adapter.QuotedSchemaTableName())
	if _, err := m.adapter.Execute(ctx, query); err != nil {
		return errors.E(op, err)
	}
	return nil
}

func (m *MigrationStateStoreLogTable) InsertVersion(ctx context.Context, r statestore.Record) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.InsertVersion"
	query, err := m.insertSQL(r)
	if err != nil {
		return errors.E(op, err)
	}
	if _, err := m.adapter.Execute(ctx, query); err != nil {
		return errors.E(op, err)
	}
	return nil
}

func (m *MigrationStateStoreLogTable) insertSQL(r statestore.Record) (string, error) {
	values := []interface{}{r.Version, r.MigrationName, formatTime(r.StartTime), formatTime(r.EndTime), r.Breakpoint}
	quoted := make([]interface{}, 0, len(values))
	for _, v := range values {
		q, err := m.adapter.QuoteValue(v)
		if err != nil {
			return "", err
		}
		quoted = append(quoted, q)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (version, migration_name, start_time, end_time, breakpoint) VALUES (%v, %v, %v, %v, %v)",
		append([]interface{}{m.adapter.QuotedSchemaTableName()}, quoted...)...,
	), nil
}

func (m *MigrationStateStoreLogTable) RemoveVersion(ctx context.Context, version int64) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.RemoveVersion"
	query := `DELETE FROM ` + m.adapter.QuotedSchemaTableName() + ` WHERE version = ` + strconv.FormatInt(version, 10)
	if _, err := m.adapter.Execute(ctx, query); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// SetVersions is similar to InsertVersion, adapted to accept multiple
// records. An existing row for the same version is replaced.
func (m *MigrationStateStoreLogTable) SetVersions(ctx context.Context, records []statestore.Record) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.SetVersions"
	for _, r := range records {
		if err := m.RemoveVersion(ctx, r.Version); err != nil {
			return errors.E(op, err)
		}
		if err := m.InsertVersion(ctx, r); err != nil {
			return errors.E(op, err)
		}
	}
	return nil
}

func (m *MigrationStateStoreLogTable) GetVersions(ctx context.Context) ([]string, error) {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.GetVersions"
	log, err := m.adapter.VersionLog(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return log.Versions(), nil
}

func (m *MigrationStateStoreLogTable) GetRecords(ctx context.Context) ([]statestore.Record, error) {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.GetRecords"
	log, err := m.adapter.VersionLog(ctx)
	if err != nil {
		return nil, errors.E(op, err)
	}
	records := make([]statestore.Record, 0, log.Len())
	for _, e := range log.Entries() {
		version, err := strconv.ParseInt(e.Version(), 10, 64)
		if err != nil {
			return nil, errors.E(op, errors.KindInternal, fmt.Errorf("version %q is not numeric: %w", e.Version(), err))
		}
		r := statestore.Record{
			Version:    version,
			StartTime:  e.StartTime(),
			EndTime:    e.EndTime(),
			Breakpoint: e.Breakpoint(),
		}
		if name, ok := e["migration_name"].(string); ok {
			r.MigrationName = name
		}
		records = append(records, r)
	}
	return records, nil
}

func (m *MigrationStateStoreLogTable) ToggleBreakpoint(ctx context.Context, version int64) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.ToggleBreakpoint"
	query := `UPDATE ` + m.adapter.QuotedSchemaTableName() +
		` SET breakpoint = CASE breakpoint WHEN 0 THEN 1 ELSE 0 END WHERE version = ` + strconv.FormatInt(version, 10)
	if err := m.update(ctx, query, version); err != nil {
		return errors.E(op, err)
	}
	return nil
}

func (m *MigrationStateStoreLogTable) SetBreakpoint(ctx context.Context, version int64, breakpoint bool) error {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.SetBreakpoint"
	flag, err := m.adapter.QuoteValue(breakpoint)
	if err != nil {
		return errors.E(op, err)
	}
	query := fmt.Sprintf("UPDATE %s SET breakpoint = %v WHERE version = %d",
		m.adapter.QuotedSchemaTableName(), flag, version)
	if err := m.update(ctx, query, version); err != nil {
		return errors.E(op, err)
	}
	return nil
}

// ResetAllBreakpoints clears every breakpoint and returns how many rows had
// one set.
func (m *MigrationStateStoreLogTable) ResetAllBreakpoints(ctx context.Context) (int64, error) {
	var op errors.Op = "migrations.MigrationStateStoreLogTable.ResetAllBreakpoints"
	query := `UPDATE ` + m.adapter.QuotedSchemaTableName() + ` SET breakpoint = 0 WHERE breakpoint <> 0`
	n, err := m.adapter.Execute(ctx, query)
	if err != nil {
		return 0, errors.E(op, err)
	}
	return n, nil
}

func (m *MigrationStateStoreLogTable) update(ctx context.Context, query string, version int64) error {
	n, err := m.adapter.Execute(ctx, query)
	if err != nil {
		return err
	}
	if n == 0 && !m.adapter.IsDryRun() {
		return errors.E(errors.Op("migrations.MigrationStateStoreLogTable.update"), errors.KindBadInput,
			fmt.Errorf("version %d is not in %s", version, m.adapter.SchemaTableName()))
	}
	return nil
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
