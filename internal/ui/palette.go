package ui

import (
	"image/color"
	"math"
)

// Dashboard palette. Gains are teal, losses rose, matching the familiar
// heat-map convention.
var (
	colBackground = color.RGBA{0x0b, 0x0f, 0x17, 0xff}
	colPanel      = color.RGBA{0x14, 0x1a, 0x26, 0xff}
	colPanelEdge  = color.RGBA{0x23, 0x2c, 0x3d, 0xff}
	colText       = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	colTextDim    = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colGain       = color.RGBA{0x14, 0xb8, 0xa6, 0xff}
	colLoss       = color.RGBA{0xf4, 0x3f, 0x5e, 0xff}
	colFlat       = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colAccent     = color.RGBA{0x38, 0xbd, 0xf8, 0xff}
)

// changeColor picks the bubble tone for a percentage change. The tone
// saturates with magnitude so big movers read hotter.
func changeColor(change float64) color.RGBA {
	base := colFlat
	if change > 0.05 {
		base = colGain
	} else if change < -0.05 {
		base = colLoss
	}
	// Scale toward full intensity over the first 10 percent of movement.
	t := math.Min(math.Abs(change)/10, 1)
	return lerpColor(dimmed(base, 0.55), base, t)
}

// lerpColor blends a toward b by t in [0,1].
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), mix(a.A, b.A)}
}

// dimmed scales a color's channels toward black, keeping alpha.
func dimmed(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

// withAlpha returns c premultiplied at alpha a.
func withAlpha(c color.RGBA, a float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}
