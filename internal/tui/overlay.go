package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/overlay"
)

// target is a button in screen coordinates.
type target struct {
	ID model.ID
	button
}

// cardRect is a screen rectangle belonging to one card.
type cardRect struct {
	ID     model.ID
	Y0, Y1 int
	X0, X1 int
}

// overlayRenderer paints frames into a layer of terminal lines. It
// implements overlay.Renderer and is driven from the bubbletea goroutine.
type overlayRenderer struct {
	cards      *cardRenderer
	itemHeight int

	frame   overlay.Frame
	state   map[model.ID]*cardState
	lines   []string
	targets []target
	texts   []cardRect

	// Keyboard focus within the overlay.
	focused bool
	focusID model.ID
	button  int
}

func newOverlayRenderer(hostBackground string, itemHeight int) *overlayRenderer {
	return &overlayRenderer{
		cards:      newCardRenderer(hostBackground),
		itemHeight: itemHeight,
		state:      make(map[model.ID]*cardState),
	}
}

// Render implements overlay.Renderer.
func (o *overlayRenderer) Render(f overlay.Frame) {
	o.frame = f
	o.paint()
}

// Frame returns the last rendered frame.
func (o *overlayRenderer) Frame() overlay.Frame {
	return o.frame
}

func (o *overlayRenderer) paint() {
	g := o.frame.Geometry
	o.lines = make([]string, max(g.Height, 0))
	o.targets = o.targets[:0]
	o.texts = o.texts[:0]
	o.ensureFocus()

	seen := make(map[model.ID]bool, len(o.frame.Items))
	for _, item := range o.frame.Items {
		id := item.Record.ID
		seen[id] = true
		st := o.state[id]
		if st == nil {
			st = &cardState{}
			o.state[id] = st
		}

		selected := -1
		if o.focused && id == o.focusID {
			selected = o.button
		}
		view := o.cards.render(item, g.Width, o.itemHeight, st, selected)

		top := item.Y - o.frame.ScrollY
		for j, line := range view.Lines {
			if row := top + j; row >= 0 && row < len(o.lines) {
				o.lines[row] = line
			}
		}
		if r, ok := o.clip(id, top, view.Text); ok {
			o.texts = append(o.texts, r)
		}
		for _, b := range view.Buttons {
			row := top + b.Row
			if row < 0 || row >= len(o.lines) {
				continue
			}
			b.Row = g.Y + row
			b.X0 += g.X
			b.X1 += g.X
			o.targets = append(o.targets, target{ID: id, button: b})
		}
	}

	for id := range o.state {
		if !seen[id] {
			delete(o.state, id)
		}
	}
}

// clip maps a card-relative region of the card whose top edge is on overlay
// row top to screen cells, cut to the painted rows.
func (o *overlayRenderer) clip(id model.ID, top int, r region) (cardRect, bool) {
	g := o.frame.Geometry
	y0 := max(top+r.Y0, 0)
	y1 := min(top+r.Y1, len(o.lines))
	if y1 <= y0 || r.X1 <= r.X0 {
		return cardRect{}, false
	}
	return cardRect{
		ID: id,
		Y0: g.Y + y0, Y1: g.Y + y1,
		X0: g.X + r.X0, X1: g.X + r.X1,
	}, true
}

// Layer returns the painted lines and the overlay's screen origin.
// Empty lines are transparent.
func (o *overlayRenderer) Layer() (lines []string, x, y int) {
	return o.lines, o.frame.Geometry.X, o.frame.Geometry.Y
}

// Hit returns the button at screen cell (x, y).
func (o *overlayRenderer) Hit(x, y int) (target, bool) {
	for _, t := range o.targets {
		if t.Row == y && x >= t.X0 && x < t.X1 {
			return t, true
		}
	}
	return target{}, false
}

// TextAt returns the record whose message area covers screen cell (x, y).
func (o *overlayRenderer) TextAt(x, y int) (model.ID, bool) {
	for _, r := range o.texts {
		if y >= r.Y0 && y < r.Y1 && x >= r.X0 && x < r.X1 {
			return r.ID, true
		}
	}
	return "", false
}

// Contains reports whether screen cell (x, y) is on the overlay surface.
func (o *overlayRenderer) Contains(x, y int) bool {
	g := o.frame.Geometry
	return y >= g.Y && y < g.Y+len(o.lines) && x >= g.X && x < g.X+g.Width
}

// FocusedID returns the record holding keyboard focus.
func (o *overlayRenderer) FocusedID() (model.ID, bool) {
	if n := o.focusedRecord(); n != nil {
		return n.ID, true
	}
	return "", false
}

// ScrollText scrolls the message of id by delta lines. It reports whether
// the message moved; a message that fits, or is already at that end, does not.
func (o *overlayRenderer) ScrollText(id model.ID, delta int) bool {
	st := o.state[id]
	if st == nil {
		return false
	}
	prev := st.textScroll
	st.textScroll = max(st.textScroll+delta, 0)
	o.paint()
	return st.textScroll != prev
}

// selectable returns the visible records in overlay order.
func (o *overlayRenderer) selectable() []*model.Notification {
	var out []*model.Notification
	for _, item := range o.frame.Items {
		if item.Record.Visible {
			out = append(out, item.Record)
		}
	}
	return out
}

// SetFocused turns keyboard focus inside the overlay on or off. It reports
// whether there is anything to focus.
func (o *overlayRenderer) SetFocused(focused bool) bool {
	o.focused = focused && len(o.selectable()) > 0
	o.button = 0
	o.ensureFocus()
	o.paint()
	return o.focused
}

// Focused reports whether the overlay has keyboard focus.
func (o *overlayRenderer) Focused() bool {
	return o.focused
}

// MoveCard moves focus to the previous (-1) or next (+1) card.
func (o *overlayRenderer) MoveCard(delta int) {
	recs := o.selectable()
	if !o.focused || len(recs) == 0 {
		return
	}
	i := indexOf(recs, o.focusID)
	i = min(max(i+delta, 0), len(recs)-1)
	o.focusID = recs[i].ID
	o.button = 0
	o.paint()
}

// MoveButton moves focus along the focused card's action row.
func (o *overlayRenderer) MoveButton(delta int) {
	n := o.focusedRecord()
	if n == nil {
		return
	}
	o.button = min(max(o.button+delta, 0), len(n.Actions))
	o.paint()
}

// Selection returns the focused record and button. An empty action means
// Dismiss.
func (o *overlayRenderer) Selection() (id model.ID, action string, ok bool) {
	n := o.focusedRecord()
	if n == nil {
		return "", "", false
	}
	if o.button > 0 {
		action = n.Actions[o.button-1]
	}
	return n.ID, action, true
}

func (o *overlayRenderer) focusedRecord() *model.Notification {
	if !o.focused {
		return nil
	}
	for _, n := range o.selectable() {
		if n.ID == o.focusID {
			return n
		}
	}
	return nil
}

// ensureFocus keeps focus on a visible record, dropping it when none is left.
func (o *overlayRenderer) ensureFocus() {
	if !o.focused {
		return
	}
	recs := o.selectable()
	if len(recs) == 0 {
		o.focused = false
		return
	}
	i := indexOf(recs, o.focusID)
	if i < 0 {
		o.focusID = recs[0].ID
		o.button = 0
		i = 0
	}
	o.button = min(max(o.button, 0), len(recs[i].Actions))
}

func indexOf(recs []*model.Notification, id model.ID) int {
	for i, n := range recs {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// composite draws layer over base with its top-left corner at (x, y). The
// result has exactly height lines of at most width columns. Empty layer
// lines leave the base visible.
func composite(base string, layer []string, x, y, width, height int) string {
	lines := strings.Split(base, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	for i, line := range layer {
		row := y + i
		if line == "" || row < 0 || row >= height {
			continue
		}
		baseLine := lines[row]
		baseWidth := ansi.StringWidth(baseLine)
		if baseWidth < x {
			baseLine += strings.Repeat(" ", x-baseWidth)
			baseWidth = x
		}

		end := x + ansi.StringWidth(line)
		out := ansi.Cut(baseLine, 0, x) + line
		if end < baseWidth {
			out += ansi.Cut(baseLine, end, baseWidth)
		}
		lines[row] = out
	}

	for i, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
