package display

import (
	"log/slog"
	"time"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
	"github.com/jmylchreest/notifarea/internal/theme/gtktheme"
)

const (
	overlayNamespace = "notifarea-overlay"
	frameInterval    = time.Second / 60
)

// Overlay is the layer-shell surface the cards are painted on. It implements
// overlay.Renderer.
type Overlay struct {
	window *gtk.Window
	scroll *gtk.ScrolledWindow
	list   *gtk.Box
	logger *slog.Logger
	themes *gtktheme.Loader

	cfg      overlay.Config
	handlers cardHandlers
	cards    map[model.ID]*card
	shown    bool
}

// NewOverlay creates the overlay window. It stays unmapped until a frame
// has a non-zero height.
func NewOverlay(app *gtk.Application, cfg overlay.Config, themes *gtktheme.Loader, h cardHandlers, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Overlay{
		logger:   logger,
		themes:   themes,
		handlers: h,
		cards:    make(map[model.ID]*card),
	}

	o.window = gtk.NewWindow()
	o.window.SetApplication(app)
	o.window.SetDecorated(false)
	o.window.SetResizable(false)
	o.window.AddCSSClass("notification-overlay")

	layershell.InitForWindow(o.window)
	layershell.SetLayer(o.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(o.window, 0)
	layershell.SetKeyboardMode(o.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(o.window, overlayNamespace)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeLeft, true)

	o.list = gtk.NewBox(gtk.OrientationVertical, 0)
	o.list.SetVAlign(gtk.AlignStart)

	// The card column may be taller than the surface, which is clamped to
	// the screen. It scrolls inside the surface instead of growing it.
	o.scroll = gtk.NewScrolledWindow()
	o.scroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	o.scroll.SetOverlayScrolling(true)
	o.scroll.SetPropagateNaturalHeight(false)
	o.scroll.SetChild(o.list)
	o.window.SetChild(o.scroll)

	o.SetConfig(cfg)
	return o
}

// Window returns the overlay surface.
func (o *Overlay) Window() *gtk.Window {
	return o.window
}

// SetConfig applies offsets and animation timing. Existing cards pick up the
// new transition duration; their size changes on the next rebuild.
func (o *Overlay) SetConfig(cfg overlay.Config) {
	o.cfg = cfg
	layershell.SetMargin(o.window, layershell.LayerShellEdgeTop, cfg.OffsetY)
	layershell.SetMargin(o.window, layershell.LayerShellEdgeLeft, cfg.OffsetX)
	for _, c := range o.cards {
		c.revealer.SetTransitionDuration(uint(cfg.Animation.Milliseconds()))
	}
}

// Render implements overlay.Renderer.
func (o *Overlay) Render(f overlay.Frame) {
	g := f.Geometry
	o.syncCards(f.Items)

	if g.Height <= 0 || g.Width <= 0 {
		if o.shown {
			o.window.SetVisible(false)
			o.scroll.VAdjustment().SetValue(0)
			o.shown = false
		}
		return
	}

	o.window.SetSizeRequest(g.Width, g.Height)
	o.window.SetDefaultSize(g.Width, g.Height)
	if !o.shown {
		o.window.Present()
		o.shown = true
	}
}

func (o *Overlay) syncCards(items []overlay.Item) {
	seen := make(map[model.ID]bool, len(items))

	var prev *card
	for _, item := range items {
		n := item.Record
		seen[n.ID] = true

		c, ok := o.cards[n.ID]
		if !ok {
			c = newCard(n, o.cfg.Width, o.cfg.ItemHeight, o.cfg.Spacing, o.handlers)
			c.revealer.SetTransitionDuration(uint(o.cfg.Animation.Milliseconds()))
			o.list.Append(c.revealer)
			o.cards[n.ID] = c
		}
		if prev == nil {
			o.list.ReorderChildAfter(c.revealer, nil)
		} else {
			o.list.ReorderChildAfter(c.revealer, prev.revealer)
		}

		c.update(n, o.themes)
		c.setShown(n.Visible, item.Amount)
		prev = c
	}

	for id, c := range o.cards {
		if !seen[id] {
			o.list.Remove(c.revealer)
			delete(o.cards, id)
		}
	}
}

// Rebuild drops every card so the next frame recreates them with the
// current geometry.
func (o *Overlay) Rebuild() {
	for id, c := range o.cards {
		o.list.Remove(c.revealer)
		delete(o.cards, id)
	}
}

// Destroy closes the overlay window.
func (o *Overlay) Destroy() {
	o.window.Destroy()
}

// frameLoop runs tick on a glib timeout while it reports true.
type frameLoop struct {
	tick    func() bool
	running bool
}

// Start begins ticking unless already running.
func (l *frameLoop) Start() {
	if l.running {
		return
	}
	l.running = true
	glib.TimeoutAdd(uint(frameInterval.Milliseconds()), func() bool {
		if l.tick() {
			return true
		}
		l.running = false
		return false
	})
}

var _ overlay.Renderer = (*Overlay)(nil)
