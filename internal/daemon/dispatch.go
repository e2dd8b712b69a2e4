package daemon

import (
	"context"
	"sync"
)

// Loop is a single-writer execution context for hosts without their own
// event loop. Dispatched functions run one at a time on the goroutine
// calling Run.
type Loop struct {
	fns  chan func()
	done chan struct{}
	once sync.Once
}

// NewLoop creates a Loop with room for buffer pending functions.
func NewLoop(buffer int) *Loop {
	return &Loop{
		fns:  make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// Dispatch queues fn. It blocks while the queue is full and drops fn once
// the loop is closed. It must not be called from inside the loop when the
// queue may be full.
func (l *Loop) Dispatch(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.fns <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to return.
// It returns false if the loop closed before fn ran.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	l.Dispatch(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

// Run processes dispatched functions until ctx is cancelled or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		case fn := <-l.fns:
			fn()
		}
	}
}

// Close stops the loop. Pending functions are discarded.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}
