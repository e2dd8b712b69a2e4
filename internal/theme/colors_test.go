package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#1b1f25", NormalizeColor("#1B1F25", "#000000"))
	assert.Equal(t, "#ffffff", NormalizeColor("#fff", "#000000"))
	assert.Equal(t, "#000000", NormalizeColor("red; } * {", "#000000"))
	assert.Equal(t, "#000000", NormalizeColor("", "#000000"))
}

func TestBlend(t *testing.T) {
	assert.Equal(t, "#ffbc00", Blend("#ffbc00", "#1b1f25", 0))
	assert.Equal(t, "#1b1f25", Blend("#ffbc00", "#1b1f25", 1))
	assert.Equal(t, "#1b1f25", Blend("#ffbc00", "#1b1f25", 3), "clamped")

	mid := Blend("#000000", "#ffffff", 0.5)
	assert.NotEqual(t, "#000000", mid)
	assert.NotEqual(t, "#ffffff", mid)

	assert.Equal(t, "bogus", Blend("bogus", "#ffffff", 0.5))
	assert.Equal(t, "#000000", Blend("#000000", "bogus", 0.5))
}

func TestIsDark(t *testing.T) {
	assert.True(t, IsDark("#1b1f25"))
	assert.False(t, IsDark("#fafafa"))
	assert.True(t, IsDark("not a color"))
}

func TestCardCSS(t *testing.T) {
	class := CardClass("#1b1f25", "#ffbc00")
	assert.Equal(t, "card-1b1f25-ffbc00", class)

	css := CardCSS("#1b1f25", "#ffbc00")
	assert.Contains(t, css, ".notification-card."+class+" { background-color: #1b1f25; }")
	assert.Contains(t, css, ".notification-card."+class+" .notification-title")
	assert.Contains(t, css, "color: #ffbc00;")
}
