package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reloads struct {
	mu      sync.Mutex
	configs []*config.Config
	errs    []error
	themes  []string
}

func (r *reloads) snapshot() (int, int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs), len(r.errs), append([]string(nil), r.themes...)
}

func startWatcher(t *testing.T) (*ConfigWatcher, string, string, *reloads) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	themes := filepath.Join(dir, "themes")

	r := &reloads{}
	w := NewConfigWatcher(path, themes, nil)
	w.SetDebounce(10 * time.Millisecond)
	w.SetReloadCallback(func(c *config.Config) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.configs = append(r.configs, c)
	})
	w.SetErrorCallback(func(err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errs = append(r.errs, err)
	})
	w.SetThemeCallback(func(name string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.themes = append(r.themes, name)
	})

	require.NoError(t, w.Start(context.Background(), config.DefaultConfig()))
	t.Cleanup(w.Stop)
	return w, path, themes, r
}

func TestConfigWatcher_ReloadsValidConfig(t *testing.T) {
	w, path, _, r := startWatcher(t)

	cfg := config.DefaultConfig()
	cfg.Overlay.Width = 321
	require.NoError(t, config.Save(path, cfg))

	assert.Eventually(t, func() bool {
		n, _, _ := r.snapshot()
		return n > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 321, w.GetCurrentConfig().Overlay.Width)
}

func TestConfigWatcher_InvalidConfigKeepsCurrent(t *testing.T) {
	w, path, _, r := startWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("[overlay]\nwidth = -5\n"), 0600))

	assert.Eventually(t, func() bool {
		_, n, _ := r.snapshot()
		return n > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, config.DefaultConfig(), w.GetCurrentConfig())
}

func TestConfigWatcher_Themes(t *testing.T) {
	_, _, themes, r := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(themes, "nord.css"), []byte("window {}"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(themes, "notes.txt"), []byte("x"), 0600))

	assert.Eventually(t, func() bool {
		_, _, got := r.snapshot()
		return len(got) > 0
	}, 2*time.Second, 10*time.Millisecond)

	_, _, got := r.snapshot()
	assert.Contains(t, got, "nord")
	assert.NotContains(t, got, "notes")
}

func TestConfigWatcher_StartStopIdempotent(t *testing.T) {
	w, _, _, _ := startWatcher(t)
	require.NoError(t, w.Start(context.Background(), nil))
	w.Stop()
	w.Stop()
}
