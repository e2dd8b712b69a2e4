package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jmylchreest/notifarea/internal/config"
)

// ConfigWatcher watches the config file and the user themes directory,
// reloading and validating the configuration when it changes.
type ConfigWatcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	configPath string
	themesDir  string
	debounce   time.Duration

	currentConfig *config.Config

	onReloadCallback func(newConfig *config.Config)
	onErrorCallback  func(err error)
	onThemeCallback  func(name string)

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewConfigWatcher creates a ConfigWatcher for configPath. Theme files are
// watched in themesDir when it is non-empty.
func NewConfigWatcher(configPath, themesDir string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		logger:     logger,
		configPath: configPath,
		themesDir:  themesDir,
		debounce:   100 * time.Millisecond,
	}
}

// SetDebounce sets how long to wait for a burst of file events to settle.
func (w *ConfigWatcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetReloadCallback sets the callback invoked with a successfully reloaded config.
func (w *ConfigWatcher) SetReloadCallback(callback func(newConfig *config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback invoked when a changed config fails to load.
func (w *ConfigWatcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// SetThemeCallback sets the callback invoked with the name of a changed theme file.
func (w *ConfigWatcher) SetThemeCallback(callback func(name string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onThemeCallback = callback
}

// Start begins watching. Missing directories are created so files added
// later are still seen.
func (w *ConfigWatcher) Start(ctx context.Context, initialConfig *config.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	for _, dir := range []string{filepath.Dir(w.configPath), w.themesDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			_ = watcher.Close()
			return err
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return err
		}
	}

	w.watcher = watcher
	w.currentConfig = initialConfig
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.watchLoop(ctx)

	w.logger.Debug("config watcher started", "path", w.configPath, "themes", w.themesDir)
	return nil
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh
	_ = w.watcher.Close()
	w.logger.Debug("config watcher stopped")
}

// GetCurrentConfig returns the current valid configuration.
func (w *ConfigWatcher) GetCurrentConfig() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

func (w *ConfigWatcher) watchLoop(ctx context.Context) {
	defer close(w.doneCh)

	w.mu.RLock()
	debounce := w.debounce
	w.mu.RUnlock()

	configName := filepath.Base(w.configPath)
	themes := make(map[string]bool)
	configChanged := false

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			dir, name := filepath.Split(event.Name)
			switch {
			case filepath.Clean(dir) == filepath.Dir(w.configPath) && name == configName:
				configChanged = true
			case w.themesDir != "" && filepath.Clean(dir) == filepath.Clean(w.themesDir) && strings.HasSuffix(name, ".css"):
				themes[strings.TrimSuffix(name, ".css")] = true
			default:
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-timer.C:
			if configChanged {
				configChanged = false
				w.reloadConfig()
			}
			for name := range themes {
				delete(themes, name)
				w.reloadTheme(name)
			}
		}
	}
}

func (w *ConfigWatcher) reloadConfig() {
	w.mu.RLock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	w.mu.RUnlock()

	w.logger.Debug("config file changed", "path", w.configPath)

	newConfig, err := config.Load(w.configPath)
	if err != nil {
		w.logger.Warn("config file changed but validation failed", "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.mu.Lock()
	w.currentConfig = newConfig
	w.mu.Unlock()

	w.logger.Info("config reloaded successfully")
	if reloadCallback != nil {
		reloadCallback(newConfig)
	}
}

func (w *ConfigWatcher) reloadTheme(name string) {
	w.mu.RLock()
	callback := w.onThemeCallback
	w.mu.RUnlock()

	w.logger.Debug("theme file changed", "theme", name)
	if callback != nil {
		callback(name)
	}
}
