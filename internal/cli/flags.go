package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/internal/formatting"
)

// CommandFlags holds the flag values shared by the commands that talk to the
// orchestration API.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, wide, json, yaml, template)
	OutputFormat string
	// Template is the Go template for template output
	Template string
	// Quiet suppresses progress indicators and non-essential output
	Quiet bool
	// Debug enables debug logging
	Debug bool
	// ConfigPath specifies a custom configuration directory path
	ConfigPath string
	// Endpoint overrides the orchestration API endpoint
	Endpoint string
}

// RegisterCommonFlags registers the common flags as persistent flags of cmd.
//
// The registered flags are:
//   - --output/-o: Output format, default: "table"
//   - --template: Go template for -o template
//   - --quiet/-q: Suppress non-essential output
//   - --debug: Enable debug logging
//   - --config-path: Configuration directory
//   - --endpoint: Orchestration API endpoint (env: MECPANEL_ENDPOINT)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", "table", "Output format (table, wide, json, yaml, template)")
	cmd.PersistentFlags().StringVar(&flags.Template, "template", "", "Go template for -o template, with sprig functions")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	cmd.PersistentFlags().StringVar(&flags.Endpoint, "endpoint", "", fmt.Sprintf("Orchestration API endpoint (env: %s)", config.EnvEndpoint))
}

// ToExecutorOptions converts CommandFlags to ExecutorOptions for use with NewExecutor.
func (f *CommandFlags) ToExecutorOptions() (ExecutorOptions, error) {
	format, err := formatting.ParseFormat(f.OutputFormat)
	if err != nil {
		return ExecutorOptions{}, err
	}
	if format == formatting.FormatTemplate && f.Template == "" {
		return ExecutorOptions{}, fmt.Errorf("--template is required with -o template")
	}

	return ExecutorOptions{
		Format:     format,
		Template:   f.Template,
		Quiet:      f.Quiet,
		Debug:      f.Debug,
		ConfigPath: f.ConfigPath,
		Endpoint:   f.Endpoint,
		Color:      isTerminal(os.Stdout),
	}, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
