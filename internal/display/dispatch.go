package display

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/notifarea/internal/scheduler"
)

// IdleDispatcher runs functions on the GTK main loop.
type IdleDispatcher struct{}

// Dispatch schedules fn as an idle callback.
func (IdleDispatcher) Dispatch(fn func()) {
	glib.IdleAdd(fn)
}

var _ scheduler.Dispatcher = IdleDispatcher{}
