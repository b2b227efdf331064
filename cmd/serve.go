package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pineunity/apmec-horizon/internal/app"
	"github.com/pineunity/apmec-horizon/internal/config"
)

var (
	serveDebug      bool
	serveConfigPath string
	serveListen     string
)

// serveCmd starts the panel backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel backend",
	Long: `Starts the panel backend HTTP server.

Every browser session gets its own row store. Resource lists are polled from
the orchestration API on request and reconciled into the stored rows, so rows
keep their identity across polls. Transient API failures return the last
known rows with a warning.

Deploy and delete operations are recorded in a local SQLite operations log.
Idle session stores are dropped on panel.sweep_schedule.

Configuration:
  mecpanel loads config.yaml from --config-path (default ~/.config/mecpanel).
  Changes to the orchestrator section are applied without a restart.

Under systemd with Type=notify, readiness is reported once the listener is up.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.NewConfig(serveDebug, serveConfigPath, serveListen, GetVersion())
	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize panel backend: %w", err)
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", config.GetDefaultConfigPathOrPanic(), "Configuration directory")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", fmt.Sprintf("Listen address, overrides panel.listen (env: %s)", config.EnvListen))
}
