package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages.
	NotificationLevelWarning
	// NotificationLevelError is for error messages.
	NotificationLevelError
)

// Header colors per level.
var levelColors = map[NotificationLevel]string{
	NotificationLevelInfo:    model.DefaultHeaderColor,
	NotificationLevelWarning: "#ebcb8b",
	NotificationLevelError:   "#bf616a",
}

// InternalNotifier posts notifications about notifarea's own events
// (config and theme reloads, audio failures) through the Center.
// Repeats of the same key are rate limited and reuse one id, so they replace
// each other instead of stacking.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	center *Center

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	duration       time.Duration
	enabled        bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(center *Center, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		center:         center,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		duration:       5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify posts an internal notification unless rate limited.
// It may be called from any goroutine.
func (n *InternalNotifier) Notify(key, title, message string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	now := n.center.clock.Now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return
	}
	n.lastNotifyTime[key] = now
	duration := n.duration
	n.mu.Unlock()

	record := model.New(model.ID("notifarea-"+key), title, message,
		model.WithDuration(duration),
		model.WithColors("", levelColors[level]),
	)

	n.logger.Debug("sending internal notification", "key", key, "title", title, "level", level)
	n.center.dispatch.Dispatch(func() { n.center.Show(record) })
}

// NotifyConfigReloaded reports a successful configuration reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"notifarea configuration has been reloaded.", NotificationLevelInfo)
}

// NotifyConfigError reports a configuration file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyThemeReloaded reports a theme reload.
func (n *InternalNotifier) NotifyThemeReloaded(themeName string) {
	n.Notify("theme-reload", "Theme Reloaded",
		"Theme '"+themeName+"' has been reloaded.", NotificationLevelInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme Error",
		"Failed to load theme: "+err.Error(), NotificationLevelWarning)
}

// NotifyAudioError reports a sound that failed to play.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio Error",
		"Failed to play notification sound: "+err.Error(), NotificationLevelError)
}
