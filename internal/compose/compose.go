// Package compose turns compose-form input into notifications and submits
// them to a Center. Both frontends share it.
package compose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/media"
	"github.com/jmylchreest/notifarea/internal/model"
)

// Swatch dimensions used when no image file is configured.
const (
	SwatchWidth  = 96
	SwatchHeight = 96
)

// ErrInvalidDuration is returned for durations that are not whole,
// non-negative milliseconds.
var ErrInvalidDuration = errors.New("duration must be a non-negative number of milliseconds")

// Request is the raw form input.
type Request struct {
	Title       string
	Message     string
	Duration    string // milliseconds
	Actions     string // comma-separated
	UseImage    bool
	UseProgress bool
}

// DefaultRequest returns a request prefilled from cfg.
func DefaultRequest(cfg *config.Config) Request {
	return Request{
		Title:    "Hello",
		Message:  "This is a **notification**.",
		Duration: strconv.Itoa(cfg.Notification.Duration.Milliseconds()),
	}
}

// ValidateDuration accepts only digits. Frontends use it to reject edits.
func ValidateDuration(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalidDuration
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ErrInvalidDuration
		}
	}
	return nil
}

// ParseDuration converts a millisecond string to a duration.
func ParseDuration(s string) (time.Duration, error) {
	if err := ValidateDuration(s); err != nil {
		return 0, err
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDuration, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Composer builds and submits notifications.
type Composer struct {
	center   *daemon.Center
	cfg      *config.Config
	logger   *slog.Logger
	onAction func(id model.ID, label string)
	image    *model.Image
}

// New creates a Composer. onAction receives every action button click.
func New(center *daemon.Center, cfg *config.Config, logger *slog.Logger, onAction func(id model.ID, label string)) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{center: center, cfg: cfg, logger: logger, onAction: onAction}
}

// SetConfig swaps the configuration used for defaults.
func (c *Composer) SetConfig(cfg *config.Config) {
	c.cfg = cfg
	c.image = nil
}

// Build validates r and creates a notification with a fresh id.
func (c *Composer) Build(r Request) (*model.Notification, error) {
	d, err := ParseDuration(r.Duration)
	if err != nil {
		return nil, err
	}
	id, err := model.NewID()
	if err != nil {
		return nil, err
	}

	opts := []model.Option{
		model.WithDuration(d),
		model.WithColors(c.cfg.Notification.Background, c.cfg.Notification.HeaderColor),
	}
	if actions := model.ParseActions(r.Actions); len(actions) > 0 {
		opts = append(opts, model.WithActions(func(label string) {
			if c.onAction != nil {
				c.onAction(id, label)
			}
		}, actions...))
	}
	if r.UseImage {
		img, err := c.loadImage()
		if err != nil {
			return nil, err
		}
		opts = append(opts, model.WithImage(img))
	}
	if r.UseProgress {
		opts = append(opts, model.WithProgressValue(0))
	}

	return model.New(id, strings.TrimSpace(r.Title), r.Message, opts...), nil
}

// Submit builds r and shows it. Progress requests start a ProgressTask
// instead, which publishes the record itself. Must be called from the
// dispatcher's goroutine.
func (c *Composer) Submit(ctx context.Context, r Request) (*model.Notification, error) {
	n, err := c.Build(r)
	if err != nil {
		return nil, err
	}

	if r.UseProgress {
		c.center.StartProgress(ctx, n, daemon.ProgressOptions{
			Interval: c.cfg.Progress.Interval.Duration(),
			Step:     c.cfg.Progress.Step,
		})
	} else {
		c.center.Show(n)
	}

	c.logger.Debug("notification submitted", "id", n.ID, "progress", r.UseProgress, "duration", n.Duration)
	return n, nil
}

func (c *Composer) loadImage() (*model.Image, error) {
	if c.image != nil {
		return c.image, nil
	}

	var (
		img *model.Image
		err error
	)
	if path := c.cfg.ImagePath(); path != "" {
		img, err = media.Load(path)
	} else {
		img, err = media.Swatch(SwatchWidth, SwatchHeight, c.cfg.Notification.HeaderColor, c.cfg.Notification.Background)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image: %w", err)
	}
	c.image = img
	return img, nil
}
