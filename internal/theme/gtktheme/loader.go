// Package gtktheme installs CSS themes and per-record color rules on a GTK
// display.
package gtktheme

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/theme"
)

// Loader loads CSS themes into GTK and maintains the per-record color rules.
// All methods must be called from the GTK main thread.
type Loader struct {
	mu          sync.RWMutex
	logger      *slog.Logger
	provider    *gtk.CSSProvider
	colors      *gtk.CSSProvider
	themesDir   string
	currentName string

	cardRules map[string]string
}

// NewLoader creates a new theme loader reading user themes from themesDir.
func NewLoader(themesDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		colors:    gtk.NewCSSProvider(),
		themesDir: themesDir,
		cardRules: make(map[string]string),
	}
}

// LoadTheme loads a theme by name. User themes override bundled ones.
// It reports whether the requested theme was found; unknown names load the
// default theme instead.
func (l *Loader) LoadTheme(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, found, err := theme.Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("failed to load theme", "theme", name, "error", err)
		return false, err
	}
	if !found {
		l.logger.Warn("theme not found, using default", "theme", name)
	}

	l.provider.LoadFromString(t.CSS)
	l.currentName = t.Name
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path)
	return found, nil
}

// Apply installs the theme and color providers on display.
func (l *Loader) Apply(display *gdk.Display) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	gtk.StyleContextAddProviderForDisplay(display, l.colors, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION+1)
	l.logger.Debug("applied theme to display", "name", l.currentName)
}

// Reload reloads the current theme from disk.
func (l *Loader) Reload() error {
	l.mu.RLock()
	name := l.currentName
	l.mu.RUnlock()
	_, err := l.LoadTheme(name)
	return err
}

// CurrentName returns the loaded theme name. It is the default theme's name
// when the requested one was not found.
func (l *Loader) CurrentName() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentName
}

// CardClass returns the CSS class for n's colors, registering its rules on
// first use.
func (l *Loader) CardClass(n *model.Notification) string {
	bg := theme.NormalizeColor(n.Background, model.DefaultBackground)
	header := theme.NormalizeColor(n.HeaderColor, model.DefaultHeaderColor)
	class := theme.CardClass(bg, header)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cardRules[class]; ok {
		return class
	}
	l.cardRules[class] = theme.CardCSS(bg, header)

	var sb strings.Builder
	for _, rule := range l.cardRules {
		sb.WriteString(rule)
	}
	l.colors.LoadFromString(sb.String())
	return class
}
