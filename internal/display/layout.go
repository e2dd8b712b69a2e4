package display

import (
	"log/slog"
	"unsafe"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// fallbackScreenHeight is used when no monitor can be queried.
const fallbackScreenHeight = 1080

// screen tracks the primary monitor the overlay is placed on.
type screen struct {
	display *gdk.Display
	logger  *slog.Logger
}

func newScreen(logger *slog.Logger) *screen {
	return &screen{display: gdk.DisplayGetDefault(), logger: logger}
}

// Monitor returns the primary monitor, or nil when none is available.
func (s *screen) Monitor() *gdk.Monitor {
	if s.display == nil {
		return nil
	}
	return getPrimaryMonitor(s.display)
}

// Height returns the primary monitor's logical height in pixels.
func (s *screen) Height() int {
	m := s.Monitor()
	if m == nil {
		s.logger.Warn("no monitor available, assuming default height", "height", fallbackScreenHeight)
		return fallbackScreenHeight
	}
	h := m.Geometry().Height()
	if h <= 0 {
		return fallbackScreenHeight
	}
	return h
}

// OnChange calls fn whenever monitors are added or removed.
func (s *screen) OnChange(fn func()) {
	if s.display == nil {
		return
	}
	s.display.Monitors().ConnectItemsChanged(func(position, removed, added uint) {
		s.logger.Info("monitor configuration changed", "count", s.display.Monitors().NItems())
		fn()
	})
}

// Place puts window on the primary monitor.
func (s *screen) Place(window *gtk.Window) {
	if m := s.Monitor(); m != nil {
		layershell.SetMonitor(window, m)
	}
}

// getPrimaryMonitor returns the first monitor. GTK4 has no notion of a
// primary output.
func getPrimaryMonitor(display *gdk.Display) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	obj := monitors.Item(0)
	if obj == nil {
		return nil
	}
	return wrapMonitor(obj)
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 doesn't export its own wrapper.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
