package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/model"
)

// Manager plays the configured sound whenever a new notification is shown.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	enabled bool
	sound   string

	// play runs off the UI goroutine; replaced in tests.
	play    func(path string) error
	onError func(error)
}

// NewManager creates a new audio manager from cfg.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		logger: logger,
		player: NewPlayer(logger),
	}
	m.play = m.player.Play
	m.UpdateConfig(cfg)
	return m
}

// SetErrorCallback sets a callback for playback failures.
func (m *Manager) SetErrorCallback(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}

// UpdateConfig applies a (re)loaded configuration, drops cached sounds and
// decodes the configured sound in the background.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	sound := cfg.SoundPath()
	if sound != "" {
		if _, err := os.Stat(sound); err != nil {
			m.logger.Warn("sound file not found", "path", sound)
			sound = ""
		}
	}

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled && sound != ""
	m.sound = sound
	m.mu.Unlock()

	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)
	m.player.ClearCache()
	m.logger.Debug("audio config updated", "enabled", m.Enabled(), "sound", sound)

	if m.Enabled() {
		go func() {
			if err := m.player.Preload(sound); err != nil {
				m.logger.Warn("failed to preload notification sound", "path", sound, "error", err)
			}
		}()
	}
}

// Enabled reports whether a sound will be played.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// OnShow is a show hook: it plays the cue for newly inserted notifications.
// Playback happens on its own goroutine.
func (m *Manager) OnShow(n *model.Notification, inserted bool) {
	if !inserted || !n.Visible {
		return
	}

	m.mu.RLock()
	enabled, sound, play, onError := m.enabled, m.sound, m.play, m.onError
	m.mu.RUnlock()
	if !enabled {
		return
	}

	go func() {
		if err := play(sound); err != nil {
			m.logger.Warn("failed to play notification sound", "id", n.ID, "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Stop releases the audio device.
func (m *Manager) Stop() {
	m.player.Close()
}
