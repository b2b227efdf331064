package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv makes the tests independent of the developer's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvEndpoint, EnvToken, EnvListen, EnvSessionKey, EnvDatabase} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644)
	require.NoError(t, err)
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.Orchestrator, cfg.Orchestrator)
	assert.Equal(t, defaults.Panel, cfg.Panel)
	assert.Equal(t, filepath.Join(tempDir, "operations.db"), cfg.Database.Path)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `
orchestrator:
  endpoint: https://controller:9896/
  auth:
    mode: bearer
    token: secret
  timeout: 5s
panel:
  listen: 0.0.0.0:9000
  session_max_age: 1h
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "https://controller:9896", cfg.Orchestrator.Endpoint, "trailing slash is trimmed")
	assert.Equal(t, AuthModeBearer, cfg.Orchestrator.Auth.Mode)
	assert.Equal(t, "secret", cfg.Orchestrator.Auth.Token)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.Timeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.Panel.Listen)
	assert.Equal(t, time.Hour, cfg.Panel.SessionMaxAge)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultSweepSchedule, cfg.Panel.SweepSchedule)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `
orchestrator:
  endpoint: http://from-file:9896
`)

	t.Setenv(EnvEndpoint, "http://from-env:9896")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvListen, "127.0.0.1:9999")
	t.Setenv(EnvSessionKey, "k")
	t.Setenv(EnvDatabase, ":memory:")

	cfg, err := LoadConfig(tempDir)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:9896", cfg.Orchestrator.Endpoint)
	assert.Equal(t, "env-token", cfg.Orchestrator.Auth.Token)
	assert.Equal(t, "127.0.0.1:9999", cfg.Panel.Listen)
	assert.Equal(t, "k", cfg.Panel.SessionKey)
	assert.Equal(t, ":memory:", cfg.Database.Path)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "orchestrator: [unterminated")

	_, err := LoadConfig(tempDir)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "parse", cfgErr.ErrorType)
	assert.True(t, IsConfigurationError(err))
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `
orchestrator:
  endpoint: ftp://controller
  auth:
    mode: kerberos
panel:
  listen: nonsense
  sweep_schedule: "every now and then"
`)

	_, err := LoadConfig(tempDir)
	require.Error(t, err)

	var collection *ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))
	assert.Equal(t, 4, collection.Count())

	fields := make([]string, 0, collection.Count())
	for _, e := range collection.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"orchestrator.endpoint",
		"orchestrator.auth.mode",
		"panel.listen",
		"panel.sweep_schedule",
	}, fields)
	assert.Contains(t, collection.GetDetailedReport(), "Suggestions:")
}

func TestApplyEnv_IgnoresEmptyValues(t *testing.T) {
	cfg := GetDefaultConfig()
	env := map[string]string{EnvEndpoint: ""}
	applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, GetDefaultConfig().Orchestrator.Endpoint, cfg.Orchestrator.Endpoint)
}

func TestGetDefaultConfigPathOrPanic(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()

	osUserHomeDir = func() (string, error) { return "/home/operator", nil }
	assert.Equal(t, filepath.Join("/home/operator", ".config/mecpanel"), GetDefaultConfigPathOrPanic())

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	assert.Panics(t, func() { GetDefaultConfigPathOrPanic() })
}
