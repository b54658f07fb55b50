package colorutil

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	red, green, blue := RGB{R: 1}, RGB{G: 1}, RGB{B: 1}
	assert.Equal(t, 0.0, Distance(red, red))
	assert.InDelta(t, math.Sqrt(3), Distance(Black, White), 1e-12)
	assert.InDelta(t, MaxDistance, Distance(White, Black), 1e-12)
	assert.InDelta(t, math.Sqrt(2), Distance(red, green), 1e-12)
	assert.Equal(t, Distance(red, blue), Distance(blue, red))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff8800", "#FF8800"},
		{"FF8800", "#FF8800"},
		{"#f80", "#FF8800"},
		{"  #0072b2 ", "#0072B2"},
	}
	for _, tt := range tests {
		c, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, c.Hex(), tt.in)
	}

	for _, bad := range []string{"", "#12", "#gggggg", "#1234567"} {
		_, err := ParseHex(bad)
		assert.ErrorIs(t, err, ErrInvalidHex, bad)
	}
}

func TestFromColor(t *testing.T) {
	c := FromColor(color.RGBA{R: 255, G: 0, B: 51, A: 255})
	assert.InDelta(t, 1.0, c.R, 1e-9)
	assert.InDelta(t, 0.0, c.G, 1e-9)
	assert.InDelta(t, 0.2, c.B, 1e-9)
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 51, A: 255}, c.Color())
}

func TestPaletteParses(t *testing.T) {
	for _, h := range Palette {
		_, err := ParseHex(h)
		assert.NoError(t, err, h)
	}
}
