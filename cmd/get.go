package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/cli"
)

var getFlags cli.CommandFlags

var getCmd = &cobra.Command{
	Use:   "get KIND ID",
	Short: "Show one orchestration resource",
	Long: `Show every attribute of one resource as returned by the orchestration API.

Exits with code 2 when the resource does not exist.

Examples:
  mecpanel get meca 6f1c5a52-0d1e-4a8e-9a55-1d0b8b0d7a33
  mecpanel get mead fw-catalog -o yaml`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeKinds(apmec.KindNames),
	RunE:              runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	cli.RegisterCommonFlags(getCmd, &getFlags)
}

func runGet(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &getFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Get(cmd.Context(), kind, args[1])
}
