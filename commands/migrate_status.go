package commands

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/util"
)

func newMigrateStatusCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &MigrateStatusOptions{
		EC: ec,
	}
	migrateStatusCmd := &cobra.Command{
		Use:   "status",
		Short: "Display the migrations recorded in the schema-log table",
		Example: `  # List applied migrations in creation order:
  tidemark migrate status

  # List them in the order they were run:
  tidemark migrate status --version-order execution_time`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := opts.Run(cmd.Context())
			if err != nil {
				return err
			}
			buf := printStatus(log, ec.NoColor || !ec.IsTerminal)
			fmt.Fprintf(ec.Stdout, "%s", buf)
			return nil
		},
	}
	return migrateStatusCmd
}

type MigrateStatusOptions struct {
	EC *cli.ExecutionContext
}

func (o *MigrateStatusOptions) Run(ctx context.Context) (*database.VersionLog, error) {
	o.EC.Spin("Fetching migration status...")
	defer o.EC.Spinner.Stop()
	log, err := o.EC.Adapter.VersionLog(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fetch migrate status")
	}
	return log, nil
}

func printStatus(log *database.VersionLog, noColor bool) *bytes.Buffer {
	buf := &bytes.Buffer{}
	if log.Len() == 0 {
		fmt.Fprintln(buf, "no migrations applied")
		return buf
	}
	breakpoint := color.New(color.FgRed, color.Bold)
	if noColor {
		breakpoint.DisableColor()
	}

	table := util.NewTableWriter(buf)
	table.SetHeader([]string{"VERSION", "MIGRATION NAME", "STARTED", "FINISHED", "BREAKPOINT"})
	for _, e := range log.Entries() {
		name, _ := e["migration_name"].(string)
		mark := ""
		if e.Breakpoint() {
			mark = breakpoint.Sprint("yes")
		}
		table.Append([]string{
			e.Version(),
			name,
			formatStatusTime(e.StartTime()),
			formatStatusTime(e.EndTime()),
			mark,
		})
	}
	table.Render()
	return buf
}

func formatStatusTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
