package compose

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notifarea/internal/config"
	"github.com/jmylchreest/notifarea/internal/daemon"
	"github.com/jmylchreest/notifarea/internal/model"
	"github.com/jmylchreest/notifarea/internal/scheduler"
	"github.com/jmylchreest/notifarea/internal/store"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"100", 100 * time.Millisecond, false},
		{" 2500 ", 2500 * time.Millisecond, false},
		{"0", 0, false},
		{"", 0, true},
		{"-5", 0, true},
		{"1.5", 0, true},
		{"10s", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRequest(t *testing.T) {
	r := DefaultRequest(config.DefaultConfig())
	assert.Equal(t, "10000", r.Duration)
	assert.NoError(t, ValidateDuration(r.Duration))
}

func newComposer(t *testing.T, cfg *config.Config, onAction func(model.ID, string)) (*Composer, *daemon.Center) {
	t.Helper()
	center := daemon.NewCenter(store.NewStore(), scheduler.Inline,
		daemon.WithClock(scheduler.NewManualClock(time.Unix(0, 0))))
	t.Cleanup(center.Close)
	return New(center, cfg, nil, onAction), center
}

func TestComposer_Build(t *testing.T) {
	cfg := config.DefaultConfig()
	var clicked []string
	c, _ := newComposer(t, cfg, func(_ model.ID, label string) { clicked = append(clicked, label) })

	n, err := c.Build(Request{
		Title:    "  Build done ",
		Message:  "all green",
		Duration: "1500",
		Actions:  "open, ,retry,",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "Build done", n.Title)
	assert.Equal(t, 1500*time.Millisecond, n.Duration)
	assert.Equal(t, []string{"open", "retry"}, n.Actions)
	assert.Equal(t, cfg.Notification.Background, n.Background)
	assert.Nil(t, n.Image)
	assert.False(t, n.HasProgress())

	n.Invoke("retry")
	assert.Equal(t, []string{"retry"}, clicked)
}

func TestComposer_BuildRejectsBadDuration(t *testing.T) {
	c, _ := newComposer(t, config.DefaultConfig(), nil)

	_, err := c.Build(Request{Title: "x", Duration: "soon"})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestComposer_ImageSwatch(t *testing.T) {
	c, _ := newComposer(t, config.DefaultConfig(), nil)

	n, err := c.Build(Request{Title: "x", Duration: "10", UseImage: true})
	require.NoError(t, err)
	require.NotNil(t, n.Image)
	assert.Equal(t, SwatchWidth, n.Image.Bitmap.Bounds().Dx())

	again, err := c.Build(Request{Title: "y", Duration: "10", UseImage: true})
	require.NoError(t, err)
	assert.Same(t, n.Image.Bitmap, again.Image.Bitmap)
}

func TestComposer_ImageFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	img := swatchImage(t)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := config.DefaultConfig()
	cfg.Notification.Image = path
	c, _ := newComposer(t, cfg, nil)

	n, err := c.Build(Request{Title: "x", Duration: "10", UseImage: true})
	require.NoError(t, err)
	assert.Equal(t, path, n.Image.Path)

	cfg.Notification.Image = filepath.Join(t.TempDir(), "missing.png")
	c.SetConfig(cfg)
	_, err = c.Build(Request{Title: "x", Duration: "10", UseImage: true})
	assert.Error(t, err)
}

func TestComposer_SubmitShows(t *testing.T) {
	c, center := newComposer(t, config.DefaultConfig(), nil)

	n, err := c.Submit(context.Background(), Request{Title: "hi", Duration: "100"})
	require.NoError(t, err)

	assert.True(t, center.Store().IsVisible(n.ID))
	assert.True(t, center.Scheduler().Armed(n.ID))
}

func TestComposer_SubmitProgress(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Progress.Interval = config.Duration(time.Millisecond)
	cfg.Progress.Step = 0.25
	c, center := newComposer(t, cfg, nil)

	n, err := c.Submit(context.Background(), Request{Title: "copy", Duration: "60000", UseProgress: true})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got := center.Store().Get(n.ID)
		return got != nil && got.ProgressValue() == 1
	}, time.Second, 5*time.Millisecond)
}

func swatchImage(t *testing.T) *image.RGBA {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	return img
}
