package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/cli"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// newExecutor initializes CLI logging and creates an executor from flags.
func newExecutor(cmd *cobra.Command, flags *cli.CommandFlags) (*cli.Executor, error) {
	level := logging.LevelWarn
	if flags.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	options, err := flags.ToExecutorOptions()
	if err != nil {
		return nil, err
	}
	options.Out = cmd.OutOrStdout()
	options.ErrOut = cmd.ErrOrStderr()
	return cli.NewExecutor(options)
}

// parseKindArg resolves the kind positional argument.
func parseKindArg(arg string) (apmec.Kind, error) {
	return apmec.ParseKind(arg)
}

// deployableKindArg resolves a kind that can be deployed and deleted.
func deployableKindArg(arg string) (apmec.Kind, error) {
	kind, err := apmec.ParseKind(arg)
	if err != nil {
		return "", err
	}
	if !kind.Deployable() {
		return "", fmt.Errorf("%s cannot be deployed or deleted (expected one of: %s)", kind.Plural(), strings.Join(deployableKindNames(), ", "))
	}
	return kind, nil
}

func deployableKindNames() []string {
	var names []string
	for _, k := range apmec.Kinds() {
		if k.Deployable() {
			names = append(names, string(k))
		}
	}
	return names
}

// listKindNames are the kinds that can be listed on their own.
func listKindNames() []string {
	var names []string
	for _, k := range apmec.Kinds() {
		if k != apmec.KindEvent {
			names = append(names, string(k))
		}
	}
	return names
}

// parseFilters converts repeated key=value flags into API query filters.
func parseFilters(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", v)
		}
		filters[key] = value
	}
	return filters, nil
}

// completeKinds returns a completion function offering names for the first
// positional argument.
func completeKinds(names func() []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return names(), cobra.ShellCompDirectiveNoFileComp
	}
}
