// Package media loads, generates and scales notification images.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // decoder registration
	_ "image/jpeg" // decoder registration
	"image/png"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"

	"github.com/jmylchreest/notifarea/internal/model"
)

// Load decodes an image file into a notification image.
func Load(path string) (*model.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return &model.Image{Path: path, Bitmap: img}, nil
}

// Swatch generates a diagonal gradient between two hex colors. It stands in
// for an image when none is configured.
func Swatch(w, h int, from, to string) (*model.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid swatch size %dx%d", w, h)
	}
	c1, err := colorful.Hex(from)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", from, err)
	}
	c2, err := colorful.Hex(to)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", to, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	span := float64(w + h - 2)
	for y := range h {
		for x := range w {
			t := 0.0
			if span > 0 {
				t = float64(x+y) / span
			}
			r, g, b := c1.BlendLab(c2, t).Clamped().RGB255()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return &model.Image{Bitmap: img}, nil
}

// Thumbnail scales img to fit within maxW x maxH, preserving aspect ratio.
// Images already small enough are returned unchanged.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	if img == nil || maxW <= 0 || maxH <= 0 {
		return img
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)
}

// Fit scales img to exactly w x h, ignoring aspect ratio. Terminal cards
// use it to fill a fixed cell grid.
func Fit(img image.Image, w, h int) image.Image {
	if img == nil || w <= 0 || h <= 0 {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Bilinear)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
