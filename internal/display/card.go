package display

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jmylchreest/notifarea/internal/media"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/theme"
	"github.com/jmylchreest/notifarea/internal/theme/gtktheme"
)

const (
	ringSize      = 28
	ringLineWidth = 3.0
)

// cardHandlers receive button clicks for one card.
type cardHandlers struct {
	dismiss func(id model.ID)
	action  func(id model.ID, label string)
}

// card is the widget tree for one notification.
type card struct {
	id       model.ID
	handlers cardHandlers

	revealer *gtk.Revealer
	root     *gtk.Box

	title   *gtk.Label
	percent *gtk.Label
	ring    *gtk.DrawingArea

	body    *gtk.Box
	picture *gtk.Picture
	text    *gtk.ScrolledWindow
	message *gtk.Label

	actions *gtk.Box

	// Last rendered state, to skip redundant widget updates.
	class       string
	msg         string
	image       *model.Image
	labels      []string
	progress    float64
	hasProgress bool
	ringColor   colorful.Color
}

func newCard(n *model.Notification, width, height, spacing int, h cardHandlers) *card {
	c := &card{id: n.ID, handlers: h}

	c.root = gtk.NewBox(gtk.OrientationVertical, 0)
	c.root.AddCSSClass("notification-card")
	c.root.SetSizeRequest(width, height)
	c.root.SetMarginBottom(spacing)
	c.root.SetOverflow(gtk.OverflowHidden)

	c.root.Append(c.buildHeader())
	c.root.Append(c.buildBody(width))
	c.root.Append(c.buildActions())

	c.revealer = gtk.NewRevealer()
	c.revealer.SetTransitionType(gtk.RevealerTransitionTypeSlideDown)
	c.revealer.SetChild(c.root)
	return c
}

func (c *card) buildHeader() gtk.Widgetter {
	header := gtk.NewBox(gtk.OrientationHorizontal, 8)
	header.AddCSSClass("notification-header")

	c.title = gtk.NewLabel("")
	c.title.AddCSSClass("notification-title")
	c.title.SetXAlign(0)
	c.title.SetEllipsize(pango.EllipsizeEnd)
	c.title.SetSingleLineMode(true)
	c.title.SetHExpand(true)
	header.Append(c.title)

	c.percent = gtk.NewLabel("")
	c.percent.AddCSSClass("notification-percent")
	c.percent.SetVisible(false)
	header.Append(c.percent)

	c.ring = gtk.NewDrawingArea()
	c.ring.AddCSSClass("notification-ring")
	c.ring.SetContentWidth(ringSize)
	c.ring.SetContentHeight(ringSize)
	c.ring.SetVAlign(gtk.AlignCenter)
	c.ring.SetVisible(false)
	c.ring.SetDrawFunc(c.drawRing)
	header.Append(c.ring)

	return header
}

func (c *card) buildBody(width int) gtk.Widgetter {
	c.body = gtk.NewBox(gtk.OrientationHorizontal, 12)
	c.body.AddCSSClass("notification-body")
	c.body.SetVExpand(true)

	c.picture = gtk.NewPicture()
	c.picture.AddCSSClass("notification-image")
	c.picture.SetCanShrink(true)
	c.picture.SetKeepAspectRatio(true)
	c.picture.SetSizeRequest(width/3, -1)
	c.picture.SetVisible(false)
	c.body.Append(c.picture)

	c.message = gtk.NewLabel("")
	c.message.AddCSSClass("notification-message")
	c.message.SetXAlign(0)
	c.message.SetYAlign(0)
	c.message.SetWrap(true)
	c.message.SetWrapMode(pango.WrapWordChar)

	c.text = gtk.NewScrolledWindow()
	c.text.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	c.text.SetHExpand(true)
	c.text.SetChild(c.message)
	c.text.SetVisible(false)
	c.body.Append(c.text)

	return c.body
}

func (c *card) buildActions() gtk.Widgetter {
	c.actions = gtk.NewBox(gtk.OrientationHorizontal, 0)

	scroll := gtk.NewScrolledWindow()
	scroll.AddCSSClass("notification-actions")
	scroll.SetPolicy(gtk.PolicyAutomatic, gtk.PolicyNever)
	scroll.SetChild(c.actions)
	return scroll
}

// update pushes n's content into the widgets.
func (c *card) update(n *model.Notification, themes *gtktheme.Loader) {
	c.title.SetText(n.Title)

	if themes != nil {
		if class := themes.CardClass(n); class != c.class {
			if c.class != "" {
				c.root.RemoveCSSClass(c.class)
			}
			c.root.AddCSSClass(class)
			c.class = class
		}
	}

	c.updateProgress(n)
	c.updateMessage(n.Message)
	c.updateImage(n.Image)
	if !slices.Equal(c.labels, n.Actions) {
		c.rebuildActions(n.Actions)
	}
	c.body.SetVisible(c.picture.IsVisible() || c.text.IsVisible())
}

func (c *card) updateProgress(n *model.Notification) {
	header, err := colorful.Hex(theme.NormalizeColor(n.HeaderColor, model.DefaultHeaderColor))
	if err == nil {
		c.ringColor = header
	}

	has := n.HasProgress()
	p := n.ProgressValue()
	c.percent.SetVisible(has)
	c.ring.SetVisible(has)
	if has {
		c.percent.SetText(percentLabel(n))
	}
	if has != c.hasProgress || p != c.progress {
		c.hasProgress, c.progress = has, p
		c.ring.QueueDraw()
	}
}

func (c *card) updateMessage(msg string) {
	c.text.SetVisible(msg != "")
	if msg == c.msg {
		return
	}
	c.msg = msg
	if looksLikeMarkup(msg) {
		c.message.SetMarkup(msg)
	} else {
		c.message.SetText(msg)
	}
}

func (c *card) updateImage(img *model.Image) {
	if sameImage(img, c.image) {
		return
	}
	c.image = img
	if img == nil {
		c.picture.SetPaintable(nil)
		c.picture.SetVisible(false)
		return
	}

	if img.Bitmap != nil {
		data, err := media.EncodePNG(img.Bitmap)
		if err == nil {
			texture, err := gdk.NewTextureFromBytes(glib.NewBytes(data))
			if err == nil {
				c.picture.SetPaintable(texture)
				c.picture.SetVisible(true)
				return
			}
		}
	}
	if img.Path != "" {
		c.picture.SetFilename(img.Path)
		c.picture.SetVisible(true)
		return
	}
	c.picture.SetVisible(false)
}

func (c *card) rebuildActions(labels []string) {
	for child := c.actions.FirstChild(); child != nil; child = c.actions.FirstChild() {
		c.actions.Remove(child)
	}
	c.labels = slices.Clone(labels)

	dismiss := gtk.NewButtonWithLabel("Dismiss")
	dismiss.AddCSSClass("dismiss")
	dismiss.ConnectClicked(func() {
		if c.handlers.dismiss != nil {
			c.handlers.dismiss(c.id)
		}
	})
	c.actions.Append(dismiss)

	for _, label := range labels {
		btn := gtk.NewButtonWithLabel(label)
		btn.ConnectClicked(func() {
			if c.handlers.action != nil {
				c.handlers.action(c.id, label)
			}
		})
		c.actions.Append(btn)
	}
}

// setShown drives the revealer and fade for the card's transition amount.
func (c *card) setShown(visible bool, amount float64) {
	if c.revealer.RevealChild() != visible {
		c.revealer.SetRevealChild(visible)
	}
	c.root.SetOpacity(amount)
	c.root.SetCanTarget(visible)
}

func (c *card) drawRing(_ *gtk.DrawingArea, cr *cairo.Context, width, height int) {
	if !c.hasProgress {
		return
	}
	cx, cy := float64(width)/2, float64(height)/2
	radius := math.Min(cx, cy) - ringLineWidth/2
	col := c.ringColor

	cr.SetLineWidth(ringLineWidth)

	cr.SetSourceRGBA(col.R, col.G, col.B, 0.25)
	cr.Arc(cx, cy, radius, 0, 2*math.Pi)
	cr.Stroke()

	start, end := ringArc(c.progress)
	if end > start {
		cr.SetSourceRGBA(col.R, col.G, col.B, 1)
		cr.Arc(cx, cy, radius, start, end)
		cr.Stroke()
	}
}

// sameImage compares image references. Clones copy the struct but share
// the bitmap.
func sameImage(a, b *model.Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Path == b.Path && a.Bitmap == b.Bitmap
}

// ringArc returns the arc angles for progress p, clockwise from 12 o'clock.
func ringArc(p float64) (start, end float64) {
	p = math.Max(0, math.Min(p, 1))
	start = -math.Pi / 2
	return start, start + 2*math.Pi*p
}

func percentLabel(n *model.Notification) string {
	return fmt.Sprintf("%d%%", n.ProgressPercent())
}

// looksLikeMarkup reports whether msg should be handed to Pango as markup.
func looksLikeMarkup(msg string) bool {
	return strings.Contains(msg, "<") && strings.Contains(msg, ">")
}
