package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
	"github.com/tidemark/cli/migrate/database"
	"github.com/tidemark/cli/util"
)

const (
	defaultDirectory = "tidemark"
)

// NewInitCmd is the definition for init command
func NewInitCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &InitOptions{
		EC: ec,
	}
	initCmd := &cobra.Command{
		Use:   "init [directory-name]",
		Short: "Initialize a directory with a tidemark config.yaml",
		Example: `  # Create a project directory, you will be asked for its name
  tidemark init

  # Create a project configured for a local postgres database:
  tidemark init my-project --database-url postgres://localhost:5432/app?sslmode=disable

  # Use a custom schema-log table ordered by execution time:
  tidemark init my-project --database-url sqlite://app.db --migration-table schema_log --version-order execution_time`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return ec.Prepare()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.InitDir = args[0]
			}
			return opts.Run()
		},
	}

	f := initCmd.Flags()
	f.StringVar(&opts.Config.DatabaseURL, "database-url", "", "database connection url, the scheme selects the driver (postgres, sqlite, sqlserver)")
	f.StringVar(&opts.Config.MigrationTable, "migration-table", "", "name of the schema-log table (default \""+database.DefaultMigrationTable+"\")")
	f.StringVar(&opts.Config.VersionOrder, "version-order", "", "order of applied migrations: creation_time or execution_time")
	return initCmd
}

type InitOptions struct {
	EC *cli.ExecutionContext

	Config  cli.Config
	InitDir string
}

func (o *InitOptions) Run() error {
	if o.InitDir == "" {
		if !o.EC.IsTerminal {
			return errors.New("directory-name is required")
		}
		dir, err := util.GetInputPrompt("Name of project directory", defaultDirectory)
		if err != nil {
			return errors.Wrap(err, "error in getting directory name")
		}
		o.InitDir = dir
	}
	switch o.Config.VersionOrder {
	case "", database.VersionOrderCreationTime, database.VersionOrderExecutionTime:
	default:
		return fmt.Errorf("invalid --version-order %q, valid options are %s, %s", o.Config.VersionOrder, database.VersionOrderCreationTime, database.VersionOrderExecutionTime)
	}

	dir := o.InitDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(o.EC.ExecutionDirectory, dir)
	}
	configPath := filepath.Join(dir, cli.ConfigFile)
	exists, err := afero.Exists(o.EC.Fs, configPath)
	if err != nil {
		return errors.Wrap(err, "cannot check for an existing config")
	}
	if exists {
		return fmt.Errorf("%s already exists", configPath)
	}
	if err := o.EC.Fs.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "cannot create project directory")
	}

	o.EC.ExecutionDirectory = dir
	if err := o.EC.WriteConfig(&o.Config); err != nil {
		return errors.Wrap(err, "cannot write config file")
	}
	o.EC.Logger.WithField("directory", dir).Info("project initialized, edit config.yaml to point database_url at your database")
	return nil
}
