package config

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/hay-kot/criterio"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.Overlay.validate("overlay"),
		c.TUI.Overlay.validate("tui.overlay"),
		c.validateNotification(),
		c.validateProgress(),
		criterio.Run("theme.color_scheme", c.Theme.ColorScheme, colorScheme),
		c.validateAudio(),
	)
}

func (c *Config) validateAudio() error {
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return criterio.NewFieldErrors("audio.volume", fmt.Errorf("must be between 0 and 100, got %d", c.Audio.Volume))
	}
	return nil
}

func (o OverlayConfig) validate(prefix string) error {
	var errs criterio.FieldErrorsBuilder
	if o.Width <= 0 {
		errs = errs.Append(prefix+".width", fmt.Errorf("must be positive, got %d", o.Width))
	}
	if o.ItemHeight <= 0 {
		errs = errs.Append(prefix+".item_height", fmt.Errorf("must be positive, got %d", o.ItemHeight))
	}
	for field, v := range map[string]int{
		".spacing":  o.Spacing,
		".margin":   o.Margin,
		".offset_x": o.OffsetX,
		".offset_y": o.OffsetY,
	} {
		if v < 0 {
			errs = errs.Append(prefix+field, fmt.Errorf("must not be negative, got %d", v))
		}
	}
	if o.Animation < 0 {
		errs = errs.Append(prefix+".animation", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateNotification() error {
	var errs criterio.FieldErrorsBuilder
	if c.Notification.Duration < 0 {
		errs = errs.Append("notification.duration", fmt.Errorf("must not be negative"))
	}
	if err := color(c.Notification.Background); err != nil {
		errs = errs.Append("notification.background", err)
	}
	if err := color(c.Notification.HeaderColor); err != nil {
		errs = errs.Append("notification.header_color", err)
	}
	return errs.ToError()
}

func (c *Config) validateProgress() error {
	var errs criterio.FieldErrorsBuilder
	if c.Progress.Interval <= 0 {
		errs = errs.Append("progress.interval", fmt.Errorf("must be positive"))
	}
	if c.Progress.Step <= 0 || c.Progress.Step > 1 {
		errs = errs.Append("progress.step", fmt.Errorf("must be in (0, 1], got %v", c.Progress.Step))
	}
	return errs.ToError()
}

func color(s string) error {
	if !hexColor.MatchString(s) {
		return fmt.Errorf("invalid color %q, expected #rrggbb", s)
	}
	return nil
}

func colorScheme(s string) error {
	if !slices.Contains(ValidColorSchemes(), ColorScheme(s)) {
		return fmt.Errorf("invalid color scheme %q, must be one of: %v", s, ValidColorSchemes())
	}
	return nil
}
