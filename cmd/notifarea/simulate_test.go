package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
)

func TestLifecycle_DoneWhenAllHidden(t *testing.T) {
	var out bytes.Buffer
	done := 0
	l := newLifecycle(&out, 2, func() { done++ })

	a := model.New("a", "first", "")
	b := model.New("b", "second", "")
	l.onShow(a, true)
	l.onShow(b, true)
	l.onHide("a", daemon.ReasonExpired)
	assert.Zero(t, done)

	l.onHide("b", daemon.ReasonDismissed)
	assert.Equal(t, 1, done)

	require.NoError(t, l.summary())
	assert.Contains(t, out.String(), `show      a "first"`)
	assert.Contains(t, out.String(), "hide      b (dismissed)")
	assert.Contains(t, out.String(), "2 shown, 2 hidden")
}

func TestLifecycle_ProgressThrottled(t *testing.T) {
	var out bytes.Buffer
	l := newLifecycle(&out, 1, func() {})

	n := model.New("p", "progress", "", model.WithProgressValue(0))
	l.onShow(n, true)
	for _, p := range []float64{0.01, 0.05, 0.1, 0.11, 0.2, 1} {
		l.onShow(n.WithProgress(p), false)
	}

	assert.Equal(t, 3, bytes.Count(out.Bytes(), []byte("progress  p")))
	assert.Contains(t, out.String(), "progress  p 100%")
}

func TestLifecycle_SummaryReportsVisible(t *testing.T) {
	var out bytes.Buffer
	l := newLifecycle(&out, 2, func() {})
	l.onShow(model.New("a", "first", ""), true)

	assert.Error(t, l.summary())
}

func TestLifecycle_FailedSubmitCountsDown(t *testing.T) {
	done := 0
	l := newLifecycle(&bytes.Buffer{}, 1, func() { done++ })
	l.failed()
	assert.Equal(t, 1, done)
}
