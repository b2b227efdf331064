package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/cli"
)

var (
	listFlags   cli.CommandFlags
	listFilters []string
)

var listCmd = &cobra.Command{
	Use:   "list KIND",
	Short: "List orchestration resources",
	Long: fmt.Sprintf(`List resources of one kind.

Available kinds: %s

Kinds are accepted by name or collection name, e.g. 'meca' or 'mecas'.
Records without an id are skipped with a warning.

Examples:
  mecpanel list mecas
  mecpanel list meas --filter status=ERROR
  mecpanel list vims -o json`, strings.Join(listKindNames(), ", ")),
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeKinds(listKindNames),
	RunE:              runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	cli.RegisterCommonFlags(listCmd, &listFlags)
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "Filter by attribute, key=value (repeatable)")
}

func runList(cmd *cobra.Command, args []string) error {
	kind, err := parseKindArg(args[0])
	if err != nil {
		return err
	}
	if kind == apmec.KindEvent {
		return fmt.Errorf("events are listed per resource, use 'mecpanel events KIND ID'")
	}
	filters, err := parseFilters(listFilters)
	if err != nil {
		return err
	}

	executor, err := newExecutor(cmd, &listFlags)
	if err != nil {
		return err
	}
	defer executor.Close()

	return executor.List(cmd.Context(), kind, filters)
}
