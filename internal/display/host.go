package display

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/notifarea/internal/compose"
	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
)

const historyMessageLen = 100

// Host is the application window: the compose form on the left and the
// history list on the right.
type Host struct {
	window   *adw.ApplicationWindow
	ctx      context.Context
	center   *daemon.Center
	composer *compose.Composer
	logger   *slog.Logger

	title       *gtk.Entry
	message     *gtk.TextView
	duration    *gtk.Entry
	actions     *gtk.Entry
	useImage    *gtk.CheckButton
	useProgress *gtk.CheckButton
	status      *gtk.Label

	history *gtk.ListBox
	rows    []*gtk.ListBoxRow

	lastDuration string
}

// NewHost builds the host window.
func NewHost(ctx context.Context, app *adw.Application, center *daemon.Center, composer *compose.Composer, cfg *config.Config, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Host{
		ctx:      ctx,
		center:   center,
		composer: composer,
		logger:   logger,
	}

	h.window = adw.NewApplicationWindow(&app.Application)
	h.window.SetTitle("notifarea")
	h.window.SetDefaultSize(900, 600)
	h.window.AddCSSClass("notification-host")

	header := adw.NewHeaderBar()

	panes := gtk.NewPaned(gtk.OrientationHorizontal)
	panes.SetStartChild(h.buildForm(compose.DefaultRequest(cfg)))
	panes.SetEndChild(h.buildHistory())
	panes.SetPosition(420)
	panes.SetVExpand(true)

	content := gtk.NewBox(gtk.OrientationVertical, 0)
	content.Append(header)
	content.Append(panes)
	h.window.SetContent(content)

	return h
}

// Window returns the host window.
func (h *Host) Window() *adw.ApplicationWindow {
	return h.window
}

func (h *Host) buildForm(req compose.Request) gtk.Widgetter {
	form := gtk.NewBox(gtk.OrientationVertical, 8)
	form.AddCSSClass("compose-form")
	form.SetMarginTop(12)
	form.SetMarginBottom(12)
	form.SetMarginStart(12)
	form.SetMarginEnd(12)

	h.title = gtk.NewEntry()
	h.title.SetText(req.Title)
	form.Append(fieldLabel("Title"))
	form.Append(h.title)

	h.message = gtk.NewTextView()
	h.message.SetWrapMode(gtk.WrapWordChar)
	h.message.Buffer().SetText(req.Message)
	msgScroll := gtk.NewScrolledWindow()
	msgScroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	msgScroll.SetMinContentHeight(80)
	msgScroll.SetChild(h.message)
	form.Append(fieldLabel("Message"))
	form.Append(msgScroll)

	h.duration = gtk.NewEntry()
	h.duration.SetInputPurpose(gtk.InputPurposeDigits)
	h.duration.SetText(req.Duration)
	h.lastDuration = req.Duration
	h.duration.ConnectChanged(h.filterDuration)
	form.Append(fieldLabel("Duration (ms)"))
	form.Append(h.duration)

	h.actions = gtk.NewEntry()
	h.actions.SetPlaceholderText("Open, Snooze")
	form.Append(fieldLabel("Actions"))
	form.Append(h.actions)

	h.useImage = gtk.NewCheckButtonWithLabel("Use image")
	h.useProgress = gtk.NewCheckButtonWithLabel("Use progress")
	form.Append(h.useImage)
	form.Append(h.useProgress)

	submit := gtk.NewButtonWithLabel("Show notification")
	submit.AddCSSClass("suggested-action")
	submit.ConnectClicked(h.submit)
	form.Append(submit)

	h.status = gtk.NewLabel("")
	h.status.AddCSSClass("dim-label")
	h.status.SetXAlign(0)
	h.status.SetWrap(true)
	form.Append(h.status)

	return form
}

// filterDuration rejects edits that would make the field non-numeric.
func (h *Host) filterDuration() {
	text := h.duration.Text()
	if text == "" || compose.ValidateDuration(text) == nil {
		h.lastDuration = text
		return
	}
	h.duration.SetText(h.lastDuration)
}

func (h *Host) request() compose.Request {
	buf := h.message.Buffer()
	start, end := buf.Bounds()
	return compose.Request{
		Title:       h.title.Text(),
		Message:     buf.Text(start, end, false),
		Duration:    h.duration.Text(),
		Actions:     h.actions.Text(),
		UseImage:    h.useImage.Active(),
		UseProgress: h.useProgress.Active(),
	}
}

func (h *Host) submit() {
	n, err := h.composer.Submit(h.ctx, h.request())
	if err != nil {
		h.SetStatus(err.Error())
		return
	}
	h.SetStatus(fmt.Sprintf("Shown %s", n.ID))
}

// SetStatus shows text under the form.
func (h *Host) SetStatus(text string) {
	h.status.SetText(text)
}

func (h *Host) buildHistory() gtk.Widgetter {
	h.history = gtk.NewListBox()
	h.history.SetSelectionMode(gtk.SelectionNone)
	h.history.AddCSSClass("history")

	scroll := gtk.NewScrolledWindow()
	scroll.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scroll.SetHExpand(true)
	scroll.SetChild(h.history)
	return scroll
}

// RefreshHistory rebuilds the history list from the store.
func (h *Host) RefreshHistory() {
	for _, row := range h.rows {
		h.history.Remove(row)
	}
	h.rows = h.rows[:0]

	for _, n := range h.center.Store().All() {
		row := h.historyRow(n)
		h.history.Append(row)
		h.rows = append(h.rows, row)
	}
}

func (h *Host) historyRow(n *model.Notification) *gtk.ListBoxRow {
	text := gtk.NewBox(gtk.OrientationVertical, 2)
	text.SetHExpand(true)

	title := gtk.NewLabel(historyTitle(n))
	title.AddCSSClass("heading")
	title.SetXAlign(0)
	title.SetEllipsize(pango.EllipsizeEnd)
	text.Append(title)

	if n.Message != "" {
		msg := gtk.NewLabel(n.MessageTruncated(historyMessageLen))
		msg.SetXAlign(0)
		msg.SetEllipsize(pango.EllipsizeEnd)
		text.Append(msg)
	}

	meta := gtk.NewLabel(historyMeta(n))
	meta.AddCSSClass("dim-label")
	meta.SetXAlign(0)
	text.Append(meta)

	id := n.ID
	var btn *gtk.Button
	if n.Visible {
		btn = gtk.NewButtonWithLabel("Dismiss")
		btn.ConnectClicked(func() { h.center.Hide(id) })
	} else {
		btn = gtk.NewButtonWithLabel("Show again")
		btn.ConnectClicked(func() { h.reshow(id) })
	}
	btn.SetVAlign(gtk.AlignCenter)

	line := gtk.NewBox(gtk.OrientationHorizontal, 12)
	line.Append(text)
	line.Append(btn)

	row := gtk.NewListBoxRow()
	row.AddCSSClass("history-row")
	if !n.Visible {
		row.AddCSSClass("hidden-record")
	}
	row.SetChild(line)
	return row
}

func (h *Host) reshow(id model.ID) {
	n := h.center.Store().Get(id)
	if n == nil {
		return
	}
	again := n.Clone()
	again.Visible = true
	h.center.Show(again)
}

func historyTitle(n *model.Notification) string {
	if n.Title == "" {
		return "(untitled)"
	}
	return n.Title
}

func historyMeta(n *model.Notification) string {
	state := "visible"
	if !n.Visible {
		state = "hidden"
	}
	meta := fmt.Sprintf("%s · %dms · %s", n.ID, n.Duration.Milliseconds(), state)
	if n.HasProgress() {
		meta += fmt.Sprintf(" · %d%%", n.ProgressPercent())
	}
	if !n.CreatedAt.IsZero() {
		meta += " · " + humanize.Time(n.CreatedAt)
	}
	return meta
}

func fieldLabel(text string) *gtk.Label {
	l := gtk.NewLabel(text)
	l.SetXAlign(0)
	l.AddCSSClass("caption-heading")
	return l
}

// applyColorScheme forwards the configured scheme to libadwaita.
func applyColorScheme(scheme string) {
	sm := adw.StyleManagerGetDefault()
	switch config.ColorScheme(scheme) {
	case config.ColorSchemeDark:
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	case config.ColorSchemeLight:
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
}
