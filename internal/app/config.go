package app

import (
	"github.com/pineunity/apmec-horizon/internal/config"
)

// Config holds the settings `mecpanel serve` is started with.
type Config struct {
	// Debug forces debug logging regardless of logging.level.
	Debug bool

	// ConfigPath is the configuration directory.
	ConfigPath string

	// Listen overrides panel.listen when set.
	Listen string

	// Version is reported to the tracing backend.
	Version string

	// PanelConfig is filled in by NewApplication.
	PanelConfig *config.PanelConfig
}

// NewConfig creates a new application configuration.
func NewConfig(debug bool, configPath, listen, version string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		Listen:     listen,
		Version:    version,
	}
}
