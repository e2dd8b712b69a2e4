package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSwatch(t *testing.T) {
	img, err := Swatch(16, 8, "#000000", "#ffffff")
	require.NoError(t, err)
	require.NotNil(t, img.Bitmap)
	assert.Empty(t, img.Path)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bitmap.Bounds())

	r0, _, _, _ := img.Bitmap.At(0, 0).RGBA()
	r1, _, _, _ := img.Bitmap.At(15, 7).RGBA()
	assert.Less(t, r0, r1)
	assert.Equal(t, uint32(0), r0)
}

func TestSwatch_Invalid(t *testing.T) {
	_, err := Swatch(0, 8, "#000000", "#ffffff")
	assert.Error(t, err)

	_, err = Swatch(4, 4, "black", "#ffffff")
	assert.Error(t, err)
}

func TestThumbnail(t *testing.T) {
	src := solid(200, 100, color.White)

	thumb := Thumbnail(src, 50, 50)
	assert.Equal(t, 50, thumb.Bounds().Dx())
	assert.Equal(t, 25, thumb.Bounds().Dy())

	small := solid(10, 10, color.White)
	assert.Equal(t, small.Bounds(), Thumbnail(small, 50, 50).Bounds())
	assert.Nil(t, Thumbnail(nil, 10, 10))
}

func TestFit(t *testing.T) {
	out := Fit(solid(200, 100, color.White), 8, 8)
	assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())
}

func TestLoadAndEncode(t *testing.T) {
	data, err := EncodePNG(solid(4, 3, color.Black))
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, 4, img.Bitmap.Bounds().Dx())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
