package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/cli"
)

var deleteFlags cli.CommandFlags

var deleteCmd = &cobra.Command{
	Use:     "delete KIND ID...",
	Aliases: []string{"terminate"},
	Short:   "Terminate deployed instances",
	Long: `Terminate one or more instances of a deployable kind.

Every id is attempted; the command fails if any of them could not be
terminated.

Examples:
  mecpanel delete meca 6f1c5a52-0d1e-4a8e-9a55-1d0b8b0d7a33
  mecpanel delete mea a1 a2 a3`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completeKinds(deployableKindNames),
	RunE:              runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	cli.RegisterCommonFlags(deleteCmd, &deleteFlags)
}

func runDelete(cmd *cobra.Command, args []string) error {
	kind, err := deployableKindArg(args[0])
	if err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &deleteFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Delete(cmd.Context(), kind, args[1:])
}
