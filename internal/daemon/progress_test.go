package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitDone(t *testing.T, task *ProgressTask) {
	t.Helper()
	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("progress task did not finish")
	}
}

func TestProgressTask_RunsToCompletion(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	var seen []float64
	c.OnShow(func(n *model.Notification, _ bool) { seen = append(seen, n.ProgressValue()) })

	var task *ProgressTask
	loop.Do(func() {
		task = c.StartProgress(context.Background(), model.New("p", "P", "", model.WithDuration(time.Minute)),
			ProgressOptions{Interval: time.Millisecond, Step: 0.25})
	})
	waitDone(t, task)

	require.NoError(t, task.Err())
	assert.Equal(t, 1, c.Store().Count())
	assert.Equal(t, 1.0, c.Store().Get("p").ProgressValue())
	assert.True(t, c.Store().IsVisible("p"))

	loop.Do(func() {})
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, seen)
}

func TestProgressTask_StopsWhenDismissed(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	var task *ProgressTask
	loop.Do(func() {
		task = c.StartProgress(context.Background(), model.New("p", "P", "", model.WithDuration(time.Minute)),
			ProgressOptions{Interval: 10 * time.Millisecond, Step: 0.01})
	})

	assert.Eventually(t, func() bool { return c.Store().IsVisible("p") }, time.Second, time.Millisecond)
	loop.Do(func() { c.Hide("p") })
	waitDone(t, task)

	assert.ErrorIs(t, task.Err(), ErrDismissed)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, c.Store().IsVisible("p"), "dismissed record is not resurrected")
	assert.Less(t, c.Store().Get("p").ProgressValue(), 1.0)
}

func TestProgressTask_StopsOnExpiry(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	var task *ProgressTask
	loop.Do(func() {
		task = c.StartProgress(context.Background(), model.New("p", "P", "", model.WithDuration(30*time.Millisecond)),
			ProgressOptions{Interval: 5 * time.Millisecond, Step: 0.001})
	})
	waitDone(t, task)

	assert.ErrorIs(t, task.Err(), ErrDismissed)
	assert.False(t, c.Store().IsVisible("p"))
}

func TestProgressTask_ContextCancel(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	ctx, cancel := context.WithCancel(context.Background())
	var task *ProgressTask
	loop.Do(func() {
		task = c.StartProgress(ctx, model.New("p", "P", ""), ProgressOptions{Interval: 10 * time.Millisecond, Step: 0.01})
	})
	cancel()
	waitDone(t, task)

	assert.ErrorIs(t, task.Err(), context.Canceled)
}

func TestProgressTask_Stop(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	var task *ProgressTask
	loop.Do(func() {
		task = c.StartProgress(context.Background(), model.New("p", "P", ""), ProgressOptions{Interval: 10 * time.Millisecond, Step: 0.01})
	})
	task.Stop()
	waitDone(t, task)

	assert.ErrorIs(t, task.Err(), context.Canceled)
}

func TestProgressTask_RestartReplacesRunningTask(t *testing.T) {
	loop := startLoop(t)
	c := NewCenter(store.NewStore(), loop)
	t.Cleanup(c.Close)

	n := model.New("p", "P", "")
	opts := ProgressOptions{Interval: 10 * time.Millisecond, Step: 0.01}
	var first, second *ProgressTask
	loop.Do(func() {
		first = c.StartProgress(context.Background(), n, opts)
		second = c.StartProgress(context.Background(), n, opts)
	})
	waitDone(t, first)

	assert.ErrorIs(t, first.Err(), context.Canceled)
	select {
	case <-second.Done():
		t.Fatal("second task should still be running")
	default:
	}
	second.Stop()
	waitDone(t, second)
}

func TestDefaultProgressOptions(t *testing.T) {
	opts := DefaultProgressOptions()
	assert.Equal(t, 200*time.Millisecond, opts.Interval)
	assert.Equal(t, 0.01, opts.Step)
}
