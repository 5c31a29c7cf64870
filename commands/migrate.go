package commands

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tidemark/cli"
	"github.com/tidemark/cli/util"

	// Initialize database drivers
	_ "github.com/tidemark/cli/migrate/database/mssql"
	_ "github.com/tidemark/cli/migrate/database/postgres"
	_ "github.com/tidemark/cli/migrate/database/sqlite"
)

// NewMigrateCmd returns the migrate command
func NewMigrateCmd(ec *cli.ExecutionContext) *cobra.Command {
	v := viper.New()
	migrateCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Inspect and manage the schema-log table of a database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ec.Viper = v
			if err := ec.Prepare(); err != nil {
				return err
			}
			if err := ec.Validate(); err != nil {
				return err
			}
			return ec.OpenDatabase()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return ec.Close()
		},
	}

	f := migrateCmd.PersistentFlags()
	f.String("database-url", "", "database connection url, the scheme selects the driver (postgres, sqlite, sqlserver)")
	f.String("migration-table", "", "name of the schema-log table")
	f.String("default-migration-table", "", "name of the schema-log table")
	f.MarkDeprecated("default-migration-table", "use --migration-table instead")
	f.String("version-order", "", "order of applied migrations: creation_time or execution_time")
	f.Bool("dry-run", false, "log the statements that would run instead of running them")

	util.BindPFlag(v, "database_url", f.Lookup("database-url"))
	util.BindPFlag(v, "migration_table", f.Lookup("migration-table"))
	util.BindPFlag(v, "default_migration_table", f.Lookup("default-migration-table"))
	util.BindPFlag(v, "version_order", f.Lookup("version-order"))
	util.BindPFlag(v, "dry_run", f.Lookup("dry-run"))

	migrateCmd.AddCommand(
		newMigrateStatusCmd(ec),
		newMigrateExecCmd(ec),
		newMigrateMarkCmd(ec),
		newMigrateUnmarkCmd(ec),
		newMigrateBreakpointCmd(ec),
	)
	return migrateCmd
}

func parseVersions(args []string) ([]int64, error) {
	versions := make([]int64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil || v < 0 {
			return nil, errors.Errorf("invalid version %q, versions are positive integers such as 20120508120534", a)
		}
		versions = append(versions, v)
	}
	return versions, nil
}
