package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// DefaultDebounceInterval is the time to wait after the last change to
// config.yaml before reloading it.
const DefaultDebounceInterval = 500 * time.Millisecond

// Watcher reloads config.yaml when it changes on disk and hands the new,
// validated configuration to OnChange. Invalid configurations are logged and
// ignored so a half-written file never replaces a working one.
type Watcher struct {
	mu sync.Mutex

	configPath string
	onChange   func(PanelConfig)
	debounce   time.Duration

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a watcher for the config.yaml inside configPath.
func NewWatcher(configPath string, onChange func(PanelConfig)) *Watcher {
	return &Watcher{
		configPath: configPath,
		onChange:   onChange,
		debounce:   DefaultDebounceInterval,
	}
}

// Start begins watching. The directory is watched rather than the file so
// editors that replace the file by rename are handled.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.configPath); err != nil {
		watcher.Close()
		return err
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	// Capture channels before releasing lock to avoid racing with Stop().
	go w.processEvents(watcher.Events, watcher.Errors, w.stopCh)

	logging.Info("ConfigWatcher", "Watching %s for configuration changes", w.configPath)
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error, stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("ConfigWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != configFileName {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("ConfigWatcher", "Configuration file changed: %s", event.Name)
	w.reloadDebounced()
}

func (w *Watcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	running := w.running
	callback := w.onChange
	w.mu.Unlock()

	if !running || callback == nil {
		return
	}

	cfg, err := LoadConfig(w.configPath)
	if err != nil {
		logging.Error("ConfigWatcher", err, "Ignoring invalid configuration change")
		return
	}
	logging.Info("ConfigWatcher", "Configuration reloaded")
	callback(cfg)
}

// Stop stops watching. Pending reloads are cancelled.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}
