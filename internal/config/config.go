// Package config handles notifarea configuration loading, validation and paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
)

const appName = "notifarea"

// Config is the configuration for notifarea.
// Loaded from $XDG_CONFIG_HOME/notifarea/config.toml
type Config struct {
	Overlay      OverlayConfig      `toml:"overlay"`
	TUI          TUIConfig          `toml:"tui"`
	Notification NotificationConfig `toml:"notification"`
	Progress     ProgressConfig     `toml:"progress"`
	Theme        ThemeConfig        `toml:"theme"`
	Audio        AudioConfig        `toml:"audio"`
}

// OverlayConfig describes overlay geometry. Units are pixels for the GTK
// overlay and cells for the terminal overlay.
type OverlayConfig struct {
	Width      int      `toml:"width"`
	ItemHeight int      `toml:"item_height"` // Height of a single notification
	Spacing    int      `toml:"spacing"`     // Gap below each notification
	Margin     int      `toml:"margin"`      // Kept free at the bottom of the screen
	OffsetX    int      `toml:"offset_x"`    // From the left screen edge
	OffsetY    int      `toml:"offset_y"`    // From the top screen edge
	Animation  Duration `toml:"animation"`
}

// TUIConfig holds terminal frontend settings.
type TUIConfig struct {
	Overlay  OverlayConfig `toml:"overlay"`
	ShowHelp bool          `toml:"show_help"`
	Mouse    bool          `toml:"mouse"`
}

// NotificationConfig holds defaults applied to composed notifications.
type NotificationConfig struct {
	Duration    Duration `toml:"duration"`
	Background  string   `toml:"background"`
	HeaderColor string   `toml:"header_color"`
	Image       string   `toml:"image"` // Used by "Use image"; empty generates a swatch
}

// ProgressConfig controls progress animations started from the form.
type ProgressConfig struct {
	Interval Duration `toml:"interval"`
	Step     float64  `toml:"step"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Sound   string `toml:"sound"`  // Played when a new notification appears
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			Width:      500,
			ItemHeight: 250,
			Spacing:    10,
			Margin:     10,
			OffsetX:    30,
			OffsetY:    30,
			Animation:  Duration(250 * time.Millisecond),
		},
		TUI: TUIConfig{
			Overlay: OverlayConfig{
				Width:      44,
				ItemHeight: 9,
				Spacing:    1,
				Margin:     1,
				OffsetX:    2,
				OffsetY:    1,
				Animation:  Duration(250 * time.Millisecond),
			},
			ShowHelp: true,
			Mouse:    true,
		},
		Notification: NotificationConfig{
			Duration:    Duration(model.DefaultDuration),
			Background:  model.DefaultBackground,
			HeaderColor: model.DefaultHeaderColor,
		},
		Progress: ProgressConfig{
			Interval: Duration(200 * time.Millisecond),
			Step:     0.01,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
	}
}

// Layout converts the geometry into overlay engine settings.
func (o OverlayConfig) Layout() overlay.Config {
	return overlay.Config{
		Width:      o.Width,
		ItemHeight: o.ItemHeight,
		Spacing:    o.Spacing,
		Margin:     o.Margin,
		OffsetX:    o.OffsetX,
		OffsetY:    o.OffsetY,
		Animation:  o.Animation.Duration(),
	}
}

// Dir returns the notifarea configuration directory.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// ThemesDir returns the directory searched for user themes.
func ThemesDir() string {
	return filepath.Join(Dir(), "themes")
}

// LogPath returns the default log file used when the terminal is busy.
func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

// Load loads the configuration from path, or from Path() when path is empty.
// If the file doesn't exist, returns the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path atomically.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = Path()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Marshal encodes the configuration as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SoundPath returns the configured sound with ~ expanded.
func (c *Config) SoundPath() string {
	return expandPath(c.Audio.Sound)
}

// ImagePath returns the configured form image with ~ expanded.
func (c *Config) ImagePath() string {
	return expandPath(c.Notification.Image)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
