package overlay

import (
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
)

// Source supplies the ordered record list.
type Source interface {
	All() []*model.Notification
}

// Controller pulls records from a Source into an Engine and pushes frames to
// a Renderer. Frontends call Refresh when the source changes and Tick on
// every animation frame while either reports true.
type Controller struct {
	engine   *Engine
	source   Source
	renderer Renderer
	now      func() time.Time
}

// NewController creates a Controller. now defaults to time.Now.
func NewController(engine *Engine, source Source, renderer Renderer, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{engine: engine, source: source, renderer: renderer, now: now}
}

// Engine returns the layout engine.
func (c *Controller) Engine() *Engine {
	return c.engine
}

// Refresh re-reads the source and renders. It reports whether more animation
// frames are needed.
func (c *Controller) Refresh() bool {
	now := c.now()
	c.engine.Update(c.source.All(), now)
	return c.render(now)
}

// Tick renders the current animation frame. It reports whether more frames
// are needed.
func (c *Controller) Tick() bool {
	return c.render(c.now())
}

// Scroll moves the overlay viewport by delta and renders when it moved.
func (c *Controller) Scroll(delta int) bool {
	now := c.now()
	if !c.engine.ScrollBy(delta, now) {
		return false
	}
	c.render(now)
	return true
}

// Reveal scrolls the record with id into view and renders when it moved.
func (c *Controller) Reveal(id model.ID) bool {
	now := c.now()
	if !c.engine.Reveal(id, now) {
		return false
	}
	c.render(now)
	return true
}

func (c *Controller) render(now time.Time) bool {
	f := c.engine.Frame(now)
	c.renderer.Render(f)
	return f.Animating
}
