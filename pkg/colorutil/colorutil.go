// Package colorutil provides shared color utilities for the graph digitizer.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// MaxDistance is the largest possible Distance between two RGB samples.
var MaxDistance = math.Sqrt(3)

// ErrInvalidHex is returned by ParseHex for malformed color strings.
var ErrInvalidHex = errors.New("invalid hex color")

// RGB is a color sample with channels normalized to [0,1].
type RGB struct {
	R, G, B float64
}

// Common colors.
var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}
)

// Palette holds the default dataset colors, assigned in order.
var Palette = []string{
	"#0072B2", "#E69F00", "#009E73", "#CC79A7", "#56B4E9", "#D55E00",
}

// FromColor converts any color.Color to a normalized RGB sample.
// Alpha is ignored; premultiplied values are used as-is.
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{
		R: float64(r) / 0xffff,
		G: float64(g) / 0xffff,
		B: float64(b) / 0xffff,
	}
}

// FromBytes builds an RGB sample from 8-bit channel values.
func FromBytes(r, g, b uint8) RGB {
	return RGB{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Color converts back to an opaque color.RGBA.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255}
}

// Hex formats the color as "#RRGGBB".
func (c RGB) Hex() string {
	rgba := c.Color()
	return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Distance returns the Euclidean distance between two samples, in [0, √3].
func Distance(a, b RGB) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ParseHex parses "#RRGGBB", "RRGGBB" or the shorthand "#RGB".
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return FromBytes(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

func to8(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(math.Round(v * 255))
}
