// Package model defines the core data structures for notifarea.
package model

import (
	"crypto/rand"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Default display attributes.
const (
	DefaultDuration    = 10 * time.Second
	DefaultBackground  = "#1b1f25"
	DefaultHeaderColor = "#ffbc00"
)

// ID identifies a notification. Equality is the uniqueness key in the store.
type ID string

// NewID returns a new ULID-based identifier.
func NewID() (ID, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return ID(id.String()), nil
}

// Image references an already decoded bitmap, a file on disk, or both.
// Renderers pick whichever representation they can display.
type Image struct {
	Path   string      `yaml:"path,omitempty"`
	Bitmap image.Image `yaml:"-"`
}

// Notification is a single toast and its current visibility and progress state.
type Notification struct {
	ID      ID     `yaml:"id"`
	Title   string `yaml:"title"`
	Message string `yaml:"message,omitempty"`
	Image   *Image `yaml:"image,omitempty"`

	// Progress is nil for plain notifications. When set it is a fraction in [0,1].
	Progress *float64 `yaml:"progress,omitempty"`

	Duration time.Duration `yaml:"duration"`
	Visible  bool          `yaml:"visible"`

	Actions  []string           `yaml:"actions,omitempty"`
	OnAction func(label string) `yaml:"-"`

	Background  string `yaml:"background"`
	HeaderColor string `yaml:"header_color"`

	CreatedAt time.Time `yaml:"created_at"`
}

// Option configures a Notification built by New.
type Option func(*Notification)

// New creates a visible notification with default duration and colors.
func New(id ID, title, message string, opts ...Option) *Notification {
	n := &Notification{
		ID:          id,
		Title:       title,
		Message:     message,
		Duration:    DefaultDuration,
		Visible:     true,
		Background:  DefaultBackground,
		HeaderColor: DefaultHeaderColor,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// WithDuration sets the auto-dismiss delay. Negative values are treated as zero.
func WithDuration(d time.Duration) Option {
	return func(n *Notification) {
		n.Duration = max(d, 0)
	}
}

// WithActions sets the action labels and the callback invoked on click.
func WithActions(onAction func(string), labels ...string) Option {
	return func(n *Notification) {
		n.Actions = append([]string(nil), labels...)
		n.OnAction = onAction
	}
}

// WithImage attaches an image reference.
func WithImage(img *Image) Option {
	return func(n *Notification) {
		n.Image = img
	}
}

// WithColors overrides the background and header text colors.
// Empty values keep the defaults.
func WithColors(background, header string) Option {
	return func(n *Notification) {
		if background != "" {
			n.Background = background
		}
		if header != "" {
			n.HeaderColor = header
		}
	}
}

// WithProgressValue puts the notification into progress mode.
func WithProgressValue(p float64) Option {
	return func(n *Notification) {
		n.setProgress(p)
	}
}

func (n *Notification) setProgress(p float64) {
	p = min(max(p, 0), 1)
	n.Progress = &p
}

// HasProgress reports whether the notification is in progress mode.
func (n *Notification) HasProgress() bool {
	return n.Progress != nil
}

// ProgressValue returns the progress fraction, or 0 when not in progress mode.
func (n *Notification) ProgressValue() float64 {
	if n.Progress == nil {
		return 0
	}
	return *n.Progress
}

// ProgressPercent returns the progress as a whole percentage.
func (n *Notification) ProgressPercent() int {
	return int(n.ProgressValue()*100 + 0.5)
}

// WithProgress returns a copy of n with its progress set to p, clamped to [0,1].
func (n *Notification) WithProgress(p float64) *Notification {
	c := n.Clone()
	c.setProgress(p)
	return c
}

// HasActions reports whether there are action buttons to render.
func (n *Notification) HasActions() bool {
	return len(n.Actions) > 0
}

// Invoke calls the action callback, if any, with label.
func (n *Notification) Invoke(label string) {
	if n.OnAction != nil {
		n.OnAction(label)
	}
}

// MessageTruncated returns the message cut to maxLen runes with whitespace collapsed.
func (n *Notification) MessageTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	msg := []rune(strings.Join(strings.Fields(n.Message), " "))
	if len(msg) <= maxLen {
		return string(msg)
	}
	return string(msg[:maxLen])
}

// Clone creates a copy of the notification that shares no mutable state
// except the image bitmap and the action callback.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Progress != nil {
		p := *n.Progress
		clone.Progress = &p
	}
	if n.Image != nil {
		img := *n.Image
		clone.Image = &img
	}
	if n.Actions != nil {
		clone.Actions = append([]string(nil), n.Actions...)
	}
	return &clone
}

// ParseActions splits a comma separated list of labels, dropping empty entries.
func ParseActions(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
