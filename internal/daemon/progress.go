package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
)

// ErrDismissed is the cause reported by a progress task whose notification
// was hidden before it reached completion.
var ErrDismissed = errors.New("notification dismissed")

// ProgressOptions controls the cadence of a progress task.
type ProgressOptions struct {
	Interval time.Duration
	Step     float64
}

// DefaultProgressOptions returns a 200ms cadence advancing one percent per tick.
func DefaultProgressOptions() ProgressOptions {
	return ProgressOptions{
		Interval: 200 * time.Millisecond,
		Step:     0.01,
	}
}

// ProgressTask re-publishes a notification with increasing progress until it
// reaches 1 or the notification is hidden.
type ProgressTask struct {
	center *Center
	record *model.Notification
	opts   ProgressOptions

	cancel context.CancelCauseFunc
	done   chan struct{}
	err    error
}

// StartProgress begins publishing n with progress 0, then advancing by
// opts.Step every opts.Interval. Hiding the notification stops the task.
// A task already running for the same id is cancelled.
//
// StartProgress must be called from the dispatcher's goroutine; the first
// publish happens asynchronously.
func (c *Center) StartProgress(ctx context.Context, n *model.Notification, opts ProgressOptions) *ProgressTask {
	if opts.Interval <= 0 || opts.Step <= 0 {
		opts = DefaultProgressOptions()
	}
	ctx, cancel := context.WithCancelCause(ctx)

	t := &ProgressTask{
		center: c,
		record: n.Clone(),
		opts:   opts,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	if t.record.CreatedAt.IsZero() {
		t.record.CreatedAt = c.clock.Now()
	}

	c.mu.Lock()
	prev := c.progress[n.ID]
	c.progress[n.ID] = t
	c.mu.Unlock()
	if prev != nil {
		prev.cancel(context.Canceled)
	}

	go func() {
		defer close(t.done)
		t.err = t.run(ctx)
		cancel(nil)

		c.mu.Lock()
		if c.progress[n.ID] == t {
			delete(c.progress, n.ID)
		}
		c.mu.Unlock()
	}()

	return t
}

// Done is closed once the task has stopped.
func (t *ProgressTask) Done() <-chan struct{} {
	return t.done
}

// Err returns why the task stopped: nil on completion, ErrDismissed when the
// notification was hidden, or the context error. It is valid after Done closes.
func (t *ProgressTask) Err() error {
	<-t.done
	return t.err
}

// Stop cancels the task without hiding the notification.
func (t *ProgressTask) Stop() {
	t.cancel(context.Canceled)
}

func (t *ProgressTask) run(ctx context.Context) error {
	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		p := min(float64(i)*t.opts.Step, 1)
		if err := t.publish(ctx, p, i == 0); err != nil {
			return err
		}
		if p >= 1 {
			return nil
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-ticker.C:
		}
	}
}

// publish shows the record with progress p on the dispatcher and waits for it.
// After the first publish a hidden record is never shown again.
func (t *ProgressTask) publish(ctx context.Context, p float64, first bool) error {
	shown := make(chan bool, 1)
	t.center.dispatch.Dispatch(func() {
		if ctx.Err() != nil || (!first && !t.center.store.IsVisible(t.record.ID)) {
			shown <- false
			return
		}
		t.center.Show(t.record.WithProgress(p))
		shown <- true
	})

	select {
	case ok := <-shown:
		if !ok {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			return ErrDismissed
		}
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
