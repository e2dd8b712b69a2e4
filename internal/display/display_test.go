package display

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/notifarea/internal/model"
)

func TestRingArc(t *testing.T) {
	tests := []struct {
		name  string
		p     float64
		sweep float64
	}{
		{"empty", 0, 0},
		{"quarter", 0.25, math.Pi / 2},
		{"full", 1, 2 * math.Pi},
		{"clamped high", 1.5, 2 * math.Pi},
		{"clamped low", -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ringArc(tt.p)
			assert.InDelta(t, -math.Pi/2, start, 1e-9)
			assert.InDelta(t, tt.sweep, end-start, 1e-9)
		})
	}
}

func TestPercentLabel(t *testing.T) {
	n := model.New("a", "t", "", model.WithProgressValue(0.42))
	assert.Equal(t, "42%", percentLabel(n))
}

func TestLooksLikeMarkup(t *testing.T) {
	assert.True(t, looksLikeMarkup("<b>bold</b>"))
	assert.False(t, looksLikeMarkup("a < b"))
	assert.False(t, looksLikeMarkup("plain"))
}

func TestHistoryMeta(t *testing.T) {
	n := model.New("01ABC", "", "msg", model.WithDuration(1500*time.Millisecond))
	assert.Equal(t, "(untitled)", historyTitle(n))
	assert.Equal(t, "01ABC · 1500ms · visible", historyMeta(n))

	n.Visible = false
	assert.Equal(t, "01ABC · 1500ms · hidden", historyMeta(n))

	p := n.WithProgress(0.5)
	assert.Contains(t, historyMeta(p), "50%")

	p.CreatedAt = time.Now().Add(-2 * time.Minute)
	assert.Contains(t, historyMeta(p), "ago")
}

func TestDisplayError(t *testing.T) {
	cause := errors.New("boom")
	err := &DisplayError{Message: "failed to load theme", Cause: cause}
	assert.Equal(t, "failed to load theme: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "no display", (&DisplayError{Message: "no display"}).Error())
}

func TestSameImage(t *testing.T) {
	img := &model.Image{Path: "/tmp/a.png"}
	n := model.New("a", "t", "", model.WithImage(img))
	clone := n.Clone()

	assert.True(t, sameImage(nil, nil))
	assert.False(t, sameImage(img, nil))
	assert.True(t, sameImage(n.Image, clone.Image))
	assert.False(t, sameImage(img, &model.Image{Path: "/tmp/b.png"}))
}
