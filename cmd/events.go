package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/cli"
)

var eventsFlags cli.CommandFlags

var eventsCmd = &cobra.Command{
	Use:   "events KIND ID",
	Short: "List the lifecycle events of a resource",
	Long: `List the lifecycle events the orchestration API recorded for one resource.

Examples:
  mecpanel events meca 6f1c5a52-0d1e-4a8e-9a55-1d0b8b0d7a33
  mecpanel events ns edge-svc -o wide`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeKinds(listKindNames),
	RunE:              runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	cli.RegisterCommonFlags(eventsCmd, &eventsFlags)
}

func runEvents(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &eventsFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Events(cmd.Context(), kind, args[1])
}
