package commands

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
)

func newMigrateExecCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &MigrateExecOptions{
		EC: ec,
	}
	migrateExecCmd := &cobra.Command{
		Use:   "exec [sql]",
		Short: "Run a SQL statement against the database",
		Long:  "Run a single SQL statement, given as argument or read from a file, directly on the database. Trailing semicolons are ignored. With --dry-run the statement is only logged.",
		Example: `  # Run a statement:
  tidemark migrate exec "UPDATE accounts SET active = 1;"

  # Run the statement stored in a file:
  tidemark migrate exec --file fixes/backfill.sql

  # Only print what would run:
  tidemark migrate exec --dry-run "DELETE FROM sessions"`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.SQL = args[0]
			}
			n, err := opts.Run(cmd.Context())
			if err != nil {
				return err
			}
			if !ec.DryRun {
				fmt.Fprintf(ec.Stdout, "%d rows affected\n", n)
			}
			return nil
		},
	}
	f := migrateExecCmd.Flags()
	f.StringVar(&opts.File, "file", "", "file holding the statement to run")
	return migrateExecCmd
}

type MigrateExecOptions struct {
	EC *cli.ExecutionContext

	SQL  string
	File string
}

func (o *MigrateExecOptions) Run(ctx context.Context) (int64, error) {
	if o.SQL != "" && o.File != "" {
		return 0, errors.New("pass either a statement or --file, not both")
	}
	if o.File != "" {
		b, err := afero.ReadFile(o.EC.Fs, o.File)
		if err != nil {
			return 0, errors.Wrap(err, "cannot read sql file")
		}
		o.SQL = string(b)
	}
	if o.SQL == "" {
		return 0, errors.New("no statement given")
	}
	n, err := o.EC.Adapter.Execute(ctx, o.SQL)
	if err != nil {
		return 0, errors.Wrap(err, "executing statement failed")
	}
	return n, nil
}
