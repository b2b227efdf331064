package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/cli"
)

var (
	operationsFlags cli.CommandFlags
	operationsLimit int
)

var operationsCmd = &cobra.Command{
	Use:     "operations",
	Aliases: []string{"ops"},
	Short:   "Show recent deploy and delete operations",
	Long: `Show the most recent deploy and delete operations from the local
operations log, newest first.

Operations still pending when 'mecpanel serve' restarted are shown as
abandoned.`,
	Args: cobra.NoArgs,
	RunE: runOperations,
}

func init() {
	rootCmd.AddCommand(operationsCmd)
	cli.RegisterCommonFlags(operationsCmd, &operationsFlags)
	operationsCmd.Flags().IntVar(&operationsLimit, "limit", 20, "Maximum number of operations to show")
}

func runOperations(cmd *cobra.Command, args []string) error {
	if operationsLimit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	executor, err := newExecutor(cmd, &operationsFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.Operations(cmd.Context(), operationsLimit)
}
