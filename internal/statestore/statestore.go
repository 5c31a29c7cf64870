package statestore

import (
	"context"
	"time"

	"github.com/tidemark/cli/pkg/errors"
)

// Record is one applied migration as kept in the schema-log table.
type Record struct {
	Version       int64
	MigrationName string
	StartTime     time.Time
	EndTime       time.Time
	Breakpoint    bool
}

// Abstraction for the storage layer for migration state
type MigrationsStateStore interface {
	// PrepareMigrationsStateStore creates the schema-log table if it is missing.
	PrepareMigrationsStateStore(ctx context.Context) error

	InsertVersion(ctx context.Context, r Record) error
	RemoveVersion(ctx context.Context, version int64) error
	SetVersions(ctx context.Context, records []Record) error

	// GetVersions returns the applied versions in the configured version order.
	GetVersions(ctx context.Context) ([]string, error)
	GetRecords(ctx context.Context) ([]Record, error)

	ToggleBreakpoint(ctx context.Context, version int64) error
	SetBreakpoint(ctx context.Context, version int64, breakpoint bool) error
	ResetAllBreakpoints(ctx context.Context) (int64, error)
}

// CopyMigrationState replays every record of src into dest.
func CopyMigrationState(ctx context.Context, src, dest MigrationsStateStore) error {
	var op errors.Op = "statestore.CopyMigrationState"
	records, err := src.GetRecords(ctx)
	if err != nil {
		return errors.E(op, err)
	}
	if err := dest.PrepareMigrationsStateStore(ctx); err != nil {
		return errors.E(op, err)
	}
	if err := dest.SetVersions(ctx, records); err != nil {
		return errors.E(op, err)
	}
	return nil
}
