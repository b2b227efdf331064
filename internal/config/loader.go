package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pineunity/apmec-horizon/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/mecpanel"
	configFileName = "config.yaml"
	databaseName   = "operations.db"
)

// Environment variables that override values from config.yaml.
const (
	EnvEndpoint   = "MECPANEL_ENDPOINT"
	EnvToken      = "MECPANEL_TOKEN"
	EnvListen     = "MECPANEL_LISTEN"
	EnvSessionKey = "MECPANEL_SESSION_KEY"
	EnvDatabase   = "MECPANEL_DATABASE"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := osUserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// ConfigFilePath returns the path of config.yaml inside configPath.
func ConfigFilePath(configPath string) string {
	return filepath.Join(configPath, configFileName)
}

// LoadConfig loads configuration from the specified directory.
// A missing config.yaml is not an error: defaults plus environment overrides
// are returned. The result is validated before it is returned.
func LoadConfig(configPath string) (PanelConfig, error) {
	configFilePath := ConfigFilePath(configPath)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return PanelConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return PanelConfig{}, NewConfigurationErrorWithDetails(
				configFilePath, configFileName, "parse",
				"malformed YAML", err.Error(),
				[]string{"Check indentation and quoting in config.yaml"},
			)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnv(&config, os.LookupEnv)

	if config.Database.Path == "" {
		config.Database.Path = filepath.Join(configPath, databaseName)
	}

	if err := config.Validate(configFilePath); err != nil {
		return PanelConfig{}, err
	}
	return config, nil
}

// applyEnv overlays MECPANEL_* environment variables on top of cfg.
func applyEnv(cfg *PanelConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvEndpoint); ok && v != "" {
		cfg.Orchestrator.Endpoint = v
	}
	if v, ok := lookup(EnvToken); ok && v != "" {
		cfg.Orchestrator.Auth.Token = v
	}
	if v, ok := lookup(EnvListen); ok && v != "" {
		cfg.Panel.Listen = v
	}
	if v, ok := lookup(EnvSessionKey); ok && v != "" {
		cfg.Panel.SessionKey = v
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		cfg.Database.Path = v
	}
	cfg.Orchestrator.Endpoint = strings.TrimRight(cfg.Orchestrator.Endpoint, "/")
}
