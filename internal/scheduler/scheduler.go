// Package scheduler arms per-notification auto-dismiss timers.
//
// At most one timer is armed per id. Expiry is handed to a Dispatcher so the
// dismissal runs on the same goroutine as every other store mutation. A timer
// cancelled after it fired, but before its dispatched callback ran, never
// reaches the expiry callback.
package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
)

// Dispatcher runs functions on the owner's goroutine.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(fn func())

// Dispatch calls d(fn).
func (d DispatchFunc) Dispatch(fn func()) { d(fn) }

// Inline runs dispatched functions immediately on the calling goroutine.
var Inline Dispatcher = DispatchFunc(func(fn func()) { fn() })

type entry struct {
	timer    Timer
	gen      uint64
	deadline time.Time
}

// Scheduler owns the id -> timer mapping.
type Scheduler struct {
	logger   *slog.Logger
	clock    Clock
	dispatch Dispatcher
	onExpire func(model.ID)

	mu      sync.Mutex
	timers  map[model.ID]*entry
	gen     uint64
	stopped bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// New creates a Scheduler that calls onExpire(id), through dispatch, when an
// armed timer elapses.
func New(dispatch Dispatcher, onExpire func(model.ID), opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   slog.Default(),
		clock:    SystemClock{},
		dispatch: dispatch,
		onExpire: onExpire,
		timers:   make(map[model.ID]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm starts a timer for id unless one is already armed.
// It reports whether a new timer was armed.
func (s *Scheduler) Arm(id model.ID, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if _, ok := s.timers[id]; ok {
		return false
	}

	s.gen++
	gen := s.gen
	e := &entry{gen: gen, deadline: s.clock.Now().Add(d)}
	e.timer = s.clock.AfterFunc(d, func() {
		s.dispatch.Dispatch(func() { s.fire(id, gen) })
	})
	s.timers[id] = e

	s.logger.Debug("dismiss timer armed", "id", id, "duration", d)
	return true
}

// Cancel stops the timer for id. It reports whether a timer was armed.
func (s *Scheduler) Cancel(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.timers, id)

	s.logger.Debug("dismiss timer cancelled", "id", id)
	return true
}

// Armed reports whether a timer is armed for id.
func (s *Scheduler) Armed(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// Deadline returns when the armed timer for id is due.
func (s *Scheduler) Deadline(id model.ID) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[id]
	if !ok {
		return time.Time{}, false
	}
	return e.deadline, true
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer. Arm is a no-op afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}

func (s *Scheduler) fire(id model.ID, gen uint64) {
	s.mu.Lock()
	e, ok := s.timers[id]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	s.logger.Debug("dismiss timer expired", "id", id)
	if s.onExpire != nil {
		s.onExpire(id)
	}
}
