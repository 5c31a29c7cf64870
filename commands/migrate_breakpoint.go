package commands

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tidemark/cli"
	"github.com/tidemark/cli/util"
)

func newMigrateBreakpointCmd(ec *cli.ExecutionContext) *cobra.Command {
	opts := &MigrateBreakpointOptions{
		EC: ec,
	}
	migrateBreakpointCmd := &cobra.Command{
		Use:   "breakpoint",
		Short: "Manage breakpoints on applied migrations",
		Long:  "A breakpoint stops rollbacks at the marked migration. Without --set or --unset the breakpoint of --version is toggled.",
		Example: `  # Toggle the breakpoint of a migration:
  tidemark migrate breakpoint --version 20120508120534

  # Clear every breakpoint:
  tidemark migrate breakpoint --remove-all`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.Run(cmd.Context())
		},
	}
	f := migrateBreakpointCmd.Flags()
	f.Int64Var(&opts.Version, "version", 0, "version of the migration")
	f.BoolVar(&opts.Set, "set", false, "set the breakpoint instead of toggling it")
	f.BoolVar(&opts.Unset, "unset", false, "unset the breakpoint instead of toggling it")
	f.BoolVar(&opts.RemoveAll, "remove-all", false, "remove every breakpoint")
	f.BoolVar(&opts.Yes, "yes", false, "do not ask for confirmation before --remove-all")
	return migrateBreakpointCmd
}

type MigrateBreakpointOptions struct {
	EC *cli.ExecutionContext

	Version   int64
	Set       bool
	Unset     bool
	RemoveAll bool
	Yes       bool
}

func (o *MigrateBreakpointOptions) Run(ctx context.Context) error {
	store := o.EC.MigrationsStateStore
	if o.RemoveAll {
		if o.Version != 0 || o.Set || o.Unset {
			return errors.New("--remove-all cannot be combined with --version, --set or --unset")
		}
		if !o.Yes && o.EC.IsTerminal {
			ok, err := util.GetYesNoPrompt("Remove every breakpoint?", false)
			if err != nil {
				return errors.Wrap(err, "error in getting confirmation")
			}
			if !ok {
				return nil
			}
		}
		n, err := store.ResetAllBreakpoints(ctx)
		if err != nil {
			return errors.Wrap(err, "cannot remove breakpoints")
		}
		fmt.Fprintf(o.EC.Stdout, "%d breakpoints removed\n", n)
		return nil
	}

	if o.Version <= 0 {
		return errors.New("--version is required")
	}
	if o.Set && o.Unset {
		return errors.New("--set and --unset are mutually exclusive")
	}
	var err error
	switch {
	case o.Set:
		err = store.SetBreakpoint(ctx, o.Version, true)
	case o.Unset:
		err = store.SetBreakpoint(ctx, o.Version, false)
	default:
		err = store.ToggleBreakpoint(ctx, o.Version)
	}
	if err != nil {
		return errors.Wrapf(err, "cannot change breakpoint of %d", o.Version)
	}
	o.EC.Logger.WithField("version", o.Version).Info("breakpoint updated")
	return nil
}
