package daemon

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/scheduler"
	"github.com/jmylchreest/notifarea/internal/store"
)

// Reason records why a notification stopped being visible.
type Reason int

const (
	// ReasonDismissed means the user or a caller hid the notification.
	ReasonDismissed Reason = iota
	// ReasonExpired means the dismiss timer elapsed.
	ReasonExpired
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	switch r {
	case ReasonDismissed:
		return "dismissed"
	case ReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ShowHook observes every Show. inserted is true for ids new to the store.
type ShowHook func(n *model.Notification, inserted bool)

// HideHook observes every visible to hidden transition.
type HideHook func(id model.ID, reason Reason)

// Center is the inbound API for notifications.
//
// Show, Hide and Act mutate shared state and must be called from the
// dispatcher's goroutine. Timer expiry and progress updates are routed
// through the same dispatcher.
type Center struct {
	logger   *slog.Logger
	store    *store.Store
	sched    *scheduler.Scheduler
	clock    scheduler.Clock
	dispatch scheduler.Dispatcher

	mu        sync.Mutex
	showHooks []ShowHook
	hideHooks []HideHook
	progress  map[model.ID]*ProgressTask
}

// CenterOption configures a Center.
type CenterOption func(*centerOptions)

type centerOptions struct {
	logger *slog.Logger
	clock  scheduler.Clock
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CenterOption {
	return func(o *centerOptions) { o.logger = l }
}

// WithClock replaces the time source used for timers and timestamps.
func WithClock(c scheduler.Clock) CenterOption {
	return func(o *centerOptions) { o.clock = c }
}

// NewCenter creates a Center over st. Expiry callbacks are delivered through dispatch.
func NewCenter(st *store.Store, dispatch scheduler.Dispatcher, opts ...CenterOption) *Center {
	o := centerOptions{logger: slog.Default(), clock: scheduler.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Center{
		logger:   o.logger,
		store:    st,
		clock:    o.clock,
		dispatch: dispatch,
		progress: make(map[model.ID]*ProgressTask),
	}
	c.sched = scheduler.New(dispatch, c.expire,
		scheduler.WithClock(o.clock),
		scheduler.WithLogger(o.logger),
	)
	return c
}

// Store returns the underlying store for read access.
func (c *Center) Store() *store.Store {
	return c.store
}

// Scheduler returns the dismiss scheduler for read access.
func (c *Center) Scheduler() *scheduler.Scheduler {
	return c.sched
}

// Dispatcher returns the dispatcher mutations must run on.
func (c *Center) Dispatcher() scheduler.Dispatcher {
	return c.dispatch
}

// OnShow registers a hook called after every Show.
func (c *Center) OnShow(h ShowHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showHooks = append(c.showHooks, h)
}

// OnHide registers a hook called after a record becomes hidden.
func (c *Center) OnHide(h HideHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideHooks = append(c.hideHooks, h)
}

// Show inserts n or replaces the record with the same id.
//
// A visible record without an armed timer gets one for n.Duration. A record
// that already has a timer keeps its original deadline. A hidden record has
// its timer cancelled.
func (c *Center) Show(n *model.Notification) {
	if n.CreatedAt.IsZero() {
		n = n.Clone()
		n.CreatedAt = c.clock.Now()
	}

	_, replaced := c.store.Upsert(n)
	if n.Visible {
		c.sched.Arm(n.ID, n.Duration)
	} else {
		c.sched.Cancel(n.ID)
		c.cancelProgress(n.ID)
	}

	c.logger.Debug("notification shown", "id", n.ID, "replaced", replaced, "visible", n.Visible)

	c.mu.Lock()
	hooks := slices.Clone(c.showHooks)
	c.mu.Unlock()
	for _, h := range hooks {
		h(n, !replaced)
	}
}

// Hide dismisses the record with id. Unknown or already hidden ids are a no-op.
// It reports whether the record changed.
func (c *Center) Hide(id model.ID) bool {
	return c.hide(id, ReasonDismissed)
}

func (c *Center) expire(id model.ID) {
	c.hide(id, ReasonExpired)
}

func (c *Center) hide(id model.ID, reason Reason) bool {
	hidden := c.store.Hide(id)
	c.sched.Cancel(id)
	c.cancelProgress(id)
	if !hidden {
		return false
	}

	c.logger.Debug("notification hidden", "id", id, "reason", reason)

	c.mu.Lock()
	hooks := slices.Clone(c.hideHooks)
	c.mu.Unlock()
	for _, h := range hooks {
		h(id, reason)
	}
	return true
}

// Act invokes the action callback of a visible record with label.
// The record stays visible. It reports whether the callback was invoked.
func (c *Center) Act(id model.ID, label string) bool {
	n := c.store.Get(id)
	if n == nil || !n.Visible || !slices.Contains(n.Actions, label) {
		return false
	}
	c.logger.Debug("notification action", "id", id, "action", label)
	n.Invoke(label)
	return true
}

// Close stops all timers and progress tasks.
func (c *Center) Close() {
	c.sched.Stop()

	c.mu.Lock()
	tasks := c.progress
	c.progress = make(map[model.ID]*ProgressTask)
	c.mu.Unlock()
	for _, t := range tasks {
		t.cancel(context.Canceled)
	}
}

func (c *Center) cancelProgress(id model.ID) {
	c.mu.Lock()
	t := c.progress[id]
	delete(c.progress, id)
	c.mu.Unlock()
	if t != nil {
		t.cancel(ErrDismissed)
	}
}
