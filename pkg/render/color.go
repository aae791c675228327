package render

import (
	"image/color"
	"strconv"
	"strings"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// Color is a CSS hex colour, "#rrggbb".
type Color string

// Palette is the default sequence of curve colours.
var Palette = []Color{
	"#ff0000", // red
	"#0000ff", // blue
	"#00ff00", // green
	"#ff00ff", // magenta
	"#00ffff", // cyan
}

// PaletteColor returns the i-th palette colour, wrapping around.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// ParseColor normalises "#rgb" and "#rrggbb" (case-insensitive) to "#rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", ferrors.New(ferrors.ErrCodeInvalidInput, "invalid color %q: want #rgb or #rrggbb", s)
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", ferrors.New(ferrors.ErrCodeInvalidInput, "invalid color %q: not hexadecimal", s)
	}
	return Color("#" + hex), nil
}

// ToRGBA converts c to an opaque image/color value. Invalid colours are black.
func (c Color) ToRGBA() color.RGBA {
	n, err := strconv.ParseUint(strings.TrimPrefix(string(c), "#"), 16, 32)
	if err != nil || len(c) != 7 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}
}
