package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/apmec"
	"github.com/pineunity/apmec-horizon/internal/cli"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeNotFound indicates the requested resource does not exist.
	ExitCodeNotFound = 2
	// ExitCodeAuthFailed indicates the orchestration API rejected the credentials.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command for the mecpanel application.
var rootCmd = &cobra.Command{
	Use:   "mecpanel",
	Short: "Operate MEC applications through the orchestration API",
	Long: `mecpanel is the backend of the MEC orchestration panel.

'mecpanel serve' runs the panel backend: every browser session gets its own
row store, kept consistent with the orchestration API by polling.

The remaining commands use the same polling and reconciliation from the
terminal: list and watch resources, deploy MEC applications from catalog
entries, and terminate them.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mecpanel version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if apmec.IsNotFound(err) {
		return ExitCodeNotFound
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
