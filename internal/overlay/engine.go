// Package overlay computes the geometry of the notification overlay.
//
// The Engine turns the ordered list of records into a Frame: the overlay's
// position and animated height, plus every record that currently occupies
// space with its enter or exit progress. Renderers paint Frames; they own no
// layout state of their own.
package overlay

import (
	"math"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
)

// Config describes the overlay layout. Units are whatever the renderer
// draws in (pixels or terminal cells).
type Config struct {
	Width      int
	ItemHeight int
	Spacing    int
	Margin     int
	OffsetX    int
	OffsetY    int
	Animation  time.Duration
}

// Slot returns the vertical space taken by one fully shown record.
func (c Config) Slot() int {
	return c.ItemHeight + c.Spacing
}

// TargetHeight returns min(visible*(ItemHeight+Spacing), screenHeight-Margin),
// never negative.
func (c Config) TargetHeight(visible, screenHeight int) int {
	h := visible * c.Slot()
	return max(min(h, screenHeight-c.Margin), 0)
}

// Phase is the transition state of one record.
type Phase int

const (
	// PhaseEntering means the record is animating in.
	PhaseEntering Phase = iota
	// PhaseShown means the record is fully shown.
	PhaseShown
	// PhaseExiting means the record was hidden and is animating out.
	PhaseExiting
	// PhaseGone means the record takes no space.
	PhaseGone
)

func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseShown:
		return "shown"
	case PhaseExiting:
		return "exiting"
	case PhaseGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Geometry is the overlay surface rectangle.
type Geometry struct {
	X, Y   int
	Width  int
	Height int // animated
	Target int // height being animated toward
}

// Item is one record occupying overlay space.
type Item struct {
	Record *model.Notification
	Phase  Phase
	Amount float64 // 0 = collapsed, 1 = fully shown
	Y      int     // top edge relative to the overlay
	Height int     // ItemHeight scaled by Amount
}

// Frame is everything a renderer needs to paint one frame. Item.Y is
// relative to the top of the content; renderers subtract ScrollY to get the
// row on the overlay surface.
type Frame struct {
	Geometry  Geometry
	Items     []Item
	Animating bool

	ScrollY       int // in [0, ContentHeight-Geometry.Height]
	ContentHeight int
}

// Renderer paints frames.
type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

// Render calls f(frame).
func (f RendererFunc) Render(frame Frame) { f(frame) }

type transition struct {
	visible bool
	amount  tween
}

// Engine tracks overlay height and per-record transitions.
// It is not safe for concurrent use; drive it from the UI goroutine.
type Engine struct {
	cfg          Config
	screenHeight int

	height  tween
	records []*model.Notification
	trans   map[model.ID]*transition
	visible int
	scroll  int
}

// NewEngine creates an Engine for a screen of the given height.
func NewEngine(cfg Config, screenHeight int) *Engine {
	return &Engine{
		cfg:          cfg,
		screenHeight: screenHeight,
		trans:        make(map[model.ID]*transition),
	}
}

// Config returns the current layout configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetConfig replaces the layout configuration and retargets the height.
func (e *Engine) SetConfig(cfg Config, now time.Time) {
	e.cfg = cfg
	e.retargetHeight(now)
}

// SetScreenHeight updates the available screen height and retargets the height.
func (e *Engine) SetScreenHeight(h int, now time.Time) {
	e.screenHeight = h
	e.retargetHeight(now)
}

// Update feeds the full ordered record list. Records seen for the first time
// while visible enter; records that turned hidden exit; records first seen
// hidden take no space.
func (e *Engine) Update(records []*model.Notification, now time.Time) {
	e.records = records
	e.visible = 0

	for _, n := range records {
		if n.Visible {
			e.visible++
		}

		tr, ok := e.trans[n.ID]
		if !ok {
			tr = &transition{visible: n.Visible, amount: settled(0)}
			if n.Visible {
				tr.amount.retarget(1, now, e.cfg.Animation)
			}
			e.trans[n.ID] = tr
			continue
		}
		if tr.visible == n.Visible {
			continue
		}
		tr.visible = n.Visible
		if n.Visible {
			tr.amount.retarget(1, now, e.cfg.Animation)
		} else {
			tr.amount.retarget(0, now, e.cfg.Animation)
		}
	}

	e.retargetHeight(now)
}

// TargetHeight returns the height the overlay is animating toward.
func (e *Engine) TargetHeight() int {
	return e.cfg.TargetHeight(e.visible, e.screenHeight)
}

// Height returns the animated overlay height at now.
func (e *Engine) Height(now time.Time) int {
	return int(math.Round(e.height.at(now)))
}

// Animating reports whether any value is still moving at now.
func (e *Engine) Animating(now time.Time) bool {
	if !e.height.done(now) {
		return true
	}
	for _, tr := range e.trans {
		if !tr.amount.done(now) {
			return true
		}
	}
	return false
}

// Frame computes the frame at now.
func (e *Engine) Frame(now time.Time) Frame {
	items, content := e.layout(now)
	f := Frame{
		Geometry: Geometry{
			X:      e.cfg.OffsetX,
			Y:      e.cfg.OffsetY,
			Width:  e.cfg.Width,
			Height: e.Height(now),
			Target: e.TargetHeight(),
		},
		Items:         items,
		Animating:     e.Animating(now),
		ContentHeight: content,
	}
	e.scroll = clampScroll(e.scroll, content, f.Geometry.Height)
	f.ScrollY = e.scroll
	return f
}

// ContentHeight returns the height of every record occupying space at now.
// It exceeds Height when the overlay is clamped to the screen.
func (e *Engine) ContentHeight(now time.Time) int {
	_, content := e.layout(now)
	return content
}

// ScrollY returns the scroll offset at now.
func (e *Engine) ScrollY(now time.Time) int {
	return clampScroll(e.scroll, e.ContentHeight(now), e.Height(now))
}

// ScrollBy moves the viewport down by delta (up when negative). It reports
// whether the offset changed.
func (e *Engine) ScrollBy(delta int, now time.Time) bool {
	return e.scrollTo(e.ScrollY(now)+delta, now)
}

// Reveal scrolls the least distance that brings the record with id fully
// into view, or as much of it as fits. It reports whether the offset changed.
func (e *Engine) Reveal(id model.ID, now time.Time) bool {
	items, _ := e.layout(now)
	for _, item := range items {
		if item.Record.ID != id {
			continue
		}
		cur := e.ScrollY(now)
		top, bottom := item.Y, item.Y+e.cfg.ItemHeight
		switch h := e.Height(now); {
		case top < cur:
			return e.scrollTo(top, now)
		case bottom > cur+h:
			return e.scrollTo(min(bottom-h, top), now)
		}
		return false
	}
	return false
}

func (e *Engine) scrollTo(y int, now time.Time) bool {
	prev := e.ScrollY(now)
	e.scroll = clampScroll(y, e.ContentHeight(now), e.Height(now))
	return e.scroll != prev
}

func clampScroll(y, content, height int) int {
	return min(max(y, 0), max(content-height, 0))
}

// layout positions every record that occupies space at now.
func (e *Engine) layout(now time.Time) ([]Item, int) {
	var items []Item
	y := 0.0
	for _, n := range e.records {
		tr := e.trans[n.ID]
		if tr == nil {
			continue
		}
		amount := tr.amount.at(now)
		phase := phaseOf(tr.visible, amount)
		if phase == PhaseGone {
			continue
		}
		items = append(items, Item{
			Record: n,
			Phase:  phase,
			Amount: amount,
			Y:      int(math.Round(y)),
			Height: int(math.Round(amount * float64(e.cfg.ItemHeight))),
		})
		y += amount * float64(e.cfg.Slot())
	}
	return items, int(math.Round(y))
}

func (e *Engine) retargetHeight(now time.Time) {
	e.height.retarget(float64(e.TargetHeight()), now, e.cfg.Animation)
}

func phaseOf(visible bool, amount float64) Phase {
	switch {
	case visible && amount >= 1:
		return PhaseShown
	case visible:
		return PhaseEntering
	case amount > 0:
		return PhaseExiting
	default:
		return PhaseGone
	}
}
