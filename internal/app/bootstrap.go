package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pineunity/apmec-horizon/internal/config"
	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// Application bootstraps and runs the panel backend.
//
// Initialization happens in two phases:
//  1. NewApplication: load configuration, configure logging, create services
//  2. Run: watch the configuration and serve until the context ends
type Application struct {
	config   *Config
	services *Services
}

// logOutput is where the panel backend logs.
var logOutput io.Writer = os.Stderr

// NewApplication loads the configuration from cfg.ConfigPath, configures
// logging from its logging section and initializes all services.
func NewApplication(ctx context.Context, cfg *Config) (*Application, error) {
	panel, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}
	if cfg.Listen != "" {
		panel.Panel.Listen = cfg.Listen
	}
	cfg.PanelConfig = &panel

	configureLogging(panel.Logging, cfg.Debug)

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func configureLogging(cfg config.LoggingConfig, debug bool) {
	level := logging.ParseLevel(cfg.Level)
	if debug {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if strings.EqualFold(cfg.Format, string(logging.FormatJSON)) {
		format = logging.FormatJSON
	}
	logging.Init(level, logOutput, format)
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves the panel until ctx is cancelled. Changes to config.yaml are
// applied to the running server. Services are closed when Run returns.
func (a *Application) Run(ctx context.Context) error {
	defer a.services.Close()

	watcher := config.NewWatcher(a.config.ConfigPath, a.services.Server.Reload)
	if err := watcher.Start(); err != nil {
		logging.Warn("Bootstrap", "Configuration changes will need a restart: %v", err)
	} else {
		defer watcher.Stop()
	}

	return a.services.Server.Start(ctx)
}
