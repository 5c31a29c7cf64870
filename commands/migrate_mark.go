package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
	"github.com/tidemark/cli/internal/statestore"
)

func newMigrateMarkCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &MigrateMarkOptions{
		EC: ec,
	}
	migrateMarkCmd := &cobra.Command{
		Use:   "mark <version>...",
		Short: "Record migrations as applied without running them",
		Example: `  # Mark a migration as applied:
  tidemark migrate mark 20120508120534 --name CreateUsers

  # Mark several at once:
  tidemark migrate mark 20120508120534 20130508120534`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := parseVersions(args)
			if err != nil {
				return err
			}
			opts.Versions = versions
			return opts.Run(cmd.Context())
		},
	}
	f := migrateMarkCmd.Flags()
	f.StringVar(&opts.Name, "name", "", "migration name to record")
	return migrateMarkCmd
}

type MigrateMarkOptions struct {
	EC *cli.ExecutionContext

	Versions []int64
	Name     string
	// Now is used for start and end times, time.Now when nil.
	Now func() time.Time
}

// Run creates the schema-log table if needed and records every version. A
// failure on one version does not stop the others.
func (o *MigrateMarkOptions) Run(ctx context.Context) error {
	store := o.EC.MigrationsStateStore
	if err := store.PrepareMigrationsStateStore(ctx); err != nil {
		return errors.Wrap(err, "cannot create schema-log table")
	}
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}

	var result error
	for _, v := range o.Versions {
		t := now()
		r := statestore.Record{
			Version:       v,
			MigrationName: o.Name,
			StartTime:     t,
			EndTime:       t,
		}
		if err := store.InsertVersion(ctx, r); err != nil {
			result = multierror.Append(result, fmt.Errorf("marking %d: %w", v, err))
			continue
		}
		o.EC.Logger.WithField("version", v).Info("migration marked as applied")
	}
	return result
}

func newMigrateUnmarkCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &MigrateUnmarkOptions{
		EC: ec,
	}
	return &cobra.Command{
		Use:   "unmark <version>...",
		Short: "Remove migrations from the schema-log table without rolling them back",
		Example: `  # Forget a migration:
  tidemark migrate unmark 20120508120534`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := parseVersions(args)
			if err != nil {
				return err
			}
			opts.Versions = versions
			return opts.Run(cmd.Context())
		},
	}
}

type MigrateUnmarkOptions struct {
	EC *cli.ExecutionContext

	Versions []int64
}

func (o *MigrateUnmarkOptions) Run(ctx context.Context) error {
	var result error
	for _, v := range o.Versions {
		if err := o.EC.MigrationsStateStore.RemoveVersion(ctx, v); err != nil {
			result = multierror.Append(result, fmt.Errorf("unmarking %d: %w", v, err))
			continue
		}
		o.EC.Logger.WithField("version", v).Info("migration removed from schema log")
	}
	return result
}
