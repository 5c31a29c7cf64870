// Package commands contains the definition for all the commands present in
// tidemark.
package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
	cerrors "github.com/tidemark/cli/pkg/errors"
)

// EC is the Execution Context for the current run.
var EC *cli.ExecutionContext

// rootCmd is the main "tidemark" command
var rootCmd *cobra.Command

func init() {
	EC = cli.NewExecutionContext()
	rootCmd = NewRootCmd(EC)
}

// NewRootCmd builds the command tree around ec.
func NewRootCmd(ec *cli.ExecutionContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tidemark",
		Short:         "Track and apply database schema migrations",
		Long:          "tidemark records applied migrations in a schema-log table and runs statements against postgres, sqlite and SQL Server databases.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		NewInitCmd(ec),
		NewMigrateCmd(ec),
		NewVersionCmd(ec),
	)
	f := cmd.PersistentFlags()
	f.StringVar(&ec.LogLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR, FATAL)")
	f.StringVar(&ec.ExecutionDirectory, "project", "", "directory where commands are executed (default: current dir)")
	f.StringVar(&ec.Envfile, "envfile", cli.DefaultEnvfile, ".env filename to load ENV vars from")
	f.BoolVar(&ec.NoColor, "no-color", false, "do not colorize output (default: false)")
	return cmd
}

// Execute executes the command and returns the error
func Execute() error {
	err := EC.Prepare()
	if err != nil {
		return errors.Wrap(err, "preparing execution context failed")
	}
	defer EC.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// LogErrorTrace writes the operations err passed through, and where it was
// raised, at debug level. Errors not built by pkg/errors are left alone.
func LogErrorTrace(logger *logrus.Logger, err error) {
	ops := cerrors.Ops(err)
	if logger == nil || len(ops) == 0 {
		return
	}
	logger.WithFields(logrus.Fields{
		"ops":      ops,
		"kind":     cerrors.GetKind(err).String(),
		"location": cerrors.GetLocation(err).String(),
	}).Debug("command failed")
}
