package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoop_RunsInOrder(t *testing.T) {
	loop := startLoop(t)

	var got []int
	for i := 0; i < 10; i++ {
		loop.Dispatch(func() { got = append(got, i) })
	}
	assert.True(t, loop.Do(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestLoop_Close(t *testing.T) {
	loop := NewLoop(1)
	done := make(chan struct{})
	go func() {
		loop.Run(context.Background())
		close(done)
	}()

	loop.Close()
	loop.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}

	assert.False(t, loop.Do(func() {}))

	// Full queue after close must not block.
	loop.Dispatch(func() {})
	loop.Dispatch(func() {})
}

func TestLoop_ContextCancel(t *testing.T) {
	loop := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, loop.Do(func() {}))
}
