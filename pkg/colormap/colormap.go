// Package colormap provides color schemes for hexagon grid visualization.
package colormap

import (
	"fmt"
	"image/color"
)

// Status colors override the sequential palette. A hexagon outside the
// region footprint is dark gray, a hexagon inside the footprint without
// data is white with a visible border, and a data hexagon whose value is
// exactly zero is white.
const (
	NotInRegionHex  = "#4a4a4a"
	NoDataHex       = "#ffffff"
	NoDataStrokeHex = "#999999"
	ZeroValueHex    = "#ffffff"
)

// Palette maps bucket indices and normalized values [0, 1] to colors.
type Palette interface {
	At(t float64) color.Color
	AtIndex(i int) color.Color
	Hex(i int) string
	Len() int
}

// SequentialPalette is an ordered light-to-dark palette. Bucket index 0 is
// the lightest color; higher buckets are darker, so color order follows
// value order.
type SequentialPalette struct {
	colors []color.RGBA
}

// Len returns the number of discrete colors.
func (p SequentialPalette) Len() int { return len(p.colors) }

// AtIndex returns the color for a bucket index, clamped to the palette.
func (p SequentialPalette) AtIndex(i int) color.Color {
	if i < 0 {
		i = 0
	}
	if i >= len(p.colors) {
		i = len(p.colors) - 1
	}
	return p.colors[i]
}

// Hex returns the bucket color as a #rrggbb string for SVG attributes.
func (p SequentialPalette) Hex(i int) string {
	c := p.AtIndex(i).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// At returns the interpolated color at position t (0-1).
func (p SequentialPalette) At(t float64) color.Color {
	if t <= 0 {
		return p.colors[0]
	}
	if t >= 1 {
		return p.colors[len(p.colors)-1]
	}

	idx := t * float64(len(p.colors)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(p.colors) {
		upper = len(p.colors) - 1
	}

	frac := idx - float64(lower)
	return interpolate(p.colors[lower], p.colors[upper], frac)
}

func interpolate(c1, c2 color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c1.R) + t*(float64(c2.R)-float64(c1.R))),
		G: uint8(float64(c1.G) + t*(float64(c2.G)-float64(c1.G))),
		B: uint8(float64(c1.B) + t*(float64(c2.B)-float64(c1.B))),
		A: 255,
	}
}

// Reds is the default 5-class sequential palette (ColorBrewer Reds).
var Reds = SequentialPalette{
	colors: []color.RGBA{
		{254, 229, 217, 255},
		{252, 174, 145, 255},
		{251, 106, 74, 255},
		{222, 45, 38, 255},
		{165, 15, 21, 255},
	},
}

// Blues is a 5-class sequential palette (ColorBrewer Blues).
var Blues = SequentialPalette{
	colors: []color.RGBA{
		{239, 243, 255, 255},
		{189, 215, 231, 255},
		{107, 174, 214, 255},
		{49, 130, 189, 255},
		{8, 81, 156, 255},
	},
}

// Purples is a 5-class sequential palette (ColorBrewer Purples).
var Purples = SequentialPalette{
	colors: []color.RGBA{
		{242, 240, 247, 255},
		{203, 201, 226, 255},
		{158, 154, 200, 255},
		{117, 107, 177, 255},
		{84, 39, 143, 255},
	},
}

// ByName returns a named palette, falling back to Reds.
func ByName(name string) SequentialPalette {
	switch name {
	case "blues":
		return Blues
	case "purples":
		return Purples
	default:
		return Reds
	}
}

// ParseHex parses a #rrggbb string, returning opaque black on malformed
// input. The raster renderer uses it to turn SVG color attributes back
// into color values.
func ParseHex(s string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
