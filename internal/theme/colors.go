package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// NormalizeColor returns s as a lowercase #rrggbb hex color, or fallback
// when s does not parse.
func NormalizeColor(s, fallback string) string {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c.Hex()
}

// Blend mixes from toward to by t in [0,1] in HCL space.
// Invalid inputs return from unchanged.
func Blend(from, to string, t float64) string {
	a, err := colorful.Hex(from)
	if err != nil {
		return from
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return from
	}
	switch {
	case t <= 0:
		return a.Hex()
	case t >= 1:
		return b.Hex()
	}
	return a.BlendHcl(b, t).Clamped().Hex()
}

// IsDark reports whether a hex color is closer to black than white.
func IsDark(hex string) bool {
	c, err := colorful.Hex(hex)
	if err != nil {
		return true
	}
	l, _, _ := c.Hcl()
	return l < 0.5
}

// CardClass returns the CSS class carrying a background/header color pair.
func CardClass(background, header string) string {
	return "card-" + strings.TrimPrefix(background, "#") + "-" + strings.TrimPrefix(header, "#")
}

// CardCSS returns the rules for CardClass(background, header).
// Both colors must already be normalized.
func CardCSS(background, header string) string {
	class := CardClass(background, header)
	return fmt.Sprintf(
		".notification-card.%[1]s { background-color: %[2]s; }\n"+
			".notification-card.%[1]s .notification-title,\n"+
			".notification-card.%[1]s .notification-percent { color: %[3]s; }\n",
		class, background, header)
}
