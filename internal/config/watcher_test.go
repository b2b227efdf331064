package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "orchestrator:\n  endpoint: http://first:9896\n")

	reloaded := make(chan PanelConfig, 4)
	w := NewWatcher(tempDir, func(cfg PanelConfig) { reloaded <- cfg })
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfig(t, tempDir, "orchestrator:\n  endpoint: http://second:9896\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "http://second:9896", cfg.Orchestrator.Endpoint)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}
}

func TestWatcher_IgnoresInvalidConfig(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	called := make(chan struct{}, 1)
	w := NewWatcher(tempDir, func(PanelConfig) { called <- struct{}{} })
	w.debounce = 10 * time.Millisecond
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfig(t, tempDir, "orchestrator:\n  endpoint: not a url\n")

	select {
	case <-called:
		t.Fatal("invalid configuration must not be delivered")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w := NewWatcher(t.TempDir(), nil)
	require.NoError(t, w.Start())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
