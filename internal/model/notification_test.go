package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.Len(t, string(a), 26)
	assert.NotEqual(t, a, b)
}

func TestNew_Defaults(t *testing.T) {
	n := New("1", "A", "body")

	assert.Equal(t, ID("1"), n.ID)
	assert.True(t, n.Visible)
	assert.Equal(t, DefaultDuration, n.Duration)
	assert.Equal(t, DefaultBackground, n.Background)
	assert.Equal(t, DefaultHeaderColor, n.HeaderColor)
	assert.False(t, n.HasProgress())
	assert.False(t, n.HasActions())
}

func TestNew_Options(t *testing.T) {
	var clicked string
	n := New("2", "B", "",
		WithDuration(-time.Second),
		WithActions(func(l string) { clicked = l }, "Retry", "Cancel"),
		WithColors("#000000", ""),
		WithProgressValue(1.7),
	)

	assert.Equal(t, time.Duration(0), n.Duration)
	assert.Equal(t, []string{"Retry", "Cancel"}, n.Actions)
	assert.Equal(t, "#000000", n.Background)
	assert.Equal(t, DefaultHeaderColor, n.HeaderColor)
	require.True(t, n.HasProgress())
	assert.Equal(t, 1.0, n.ProgressValue())

	n.Invoke("Retry")
	assert.Equal(t, "Retry", clicked)
}

func TestNotification_WithProgress(t *testing.T) {
	n := New("3", "C", "")
	tests := []struct {
		in      float64
		want    float64
		percent int
	}{
		{0, 0, 0},
		{0.5, 0.5, 50},
		{0.126, 0.126, 13},
		{0.996, 0.996, 100},
		{-1, 0, 0},
		{2, 1, 100},
	}

	for _, tt := range tests {
		got := n.WithProgress(tt.in)
		assert.Equal(t, tt.want, got.ProgressValue())
		assert.Equal(t, tt.percent, got.ProgressPercent())
	}
	assert.False(t, n.HasProgress(), "receiver must be untouched")
}

func TestNotification_Clone(t *testing.T) {
	n := New("4", "D", "", WithProgressValue(0.2), WithActions(nil, "x"), WithImage(&Image{Path: "a.png"}))
	c := n.Clone()

	*c.Progress = 0.9
	c.Actions[0] = "y"
	c.Image.Path = "b.png"

	assert.Equal(t, 0.2, n.ProgressValue())
	assert.Equal(t, "x", n.Actions[0])
	assert.Equal(t, "a.png", n.Image.Path)
}

func TestNotification_InvokeWithoutCallback(t *testing.T) {
	n := New("5", "E", "", WithActions(nil, "x"))
	assert.NotPanics(t, func() { n.Invoke("x") })
}

func TestNotification_MessageTruncated(t *testing.T) {
	n := New("6", "F", "hello\n   world  again")

	assert.Equal(t, "hello world again", n.MessageTruncated(100))
	assert.Equal(t, "hello", n.MessageTruncated(5))
	assert.Equal(t, "", n.MessageTruncated(0))
}

func TestParseActions(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Retry", []string{"Retry"}},
		{"Retry,Cancel", []string{"Retry", "Cancel"}},
		{" Retry , ,Cancel,", []string{"Retry", "Cancel"}},
		{"a,a", []string{"a", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseActions(tt.in))
		})
	}
}
