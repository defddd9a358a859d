package thema

import (
	"fmt"
	"image/color"

	"github.com/aclements/go-gg/palette"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Named color ramps. Stops are resampled through CIE-Lab interpolation so
// the rendered gradient is perceptually even rather than a straight RGB
// blend between the published stops.
var rampStops = map[string][]string{
	"viridis": {
		"#440154", "#482878", "#3E4A89", "#31688E", "#26828E",
		"#1F9E89", "#35B779", "#6DCD59", "#B4DE2C", "#FDE725",
	},
	"magma": {
		"#000004", "#180F3E", "#451077", "#721F81", "#9F2F7F",
		"#CD4071", "#F1605D", "#FD9567", "#FEC98D", "#FCFDBF",
	},
	"blues": {
		"#F7FBFF", "#DEEBF7", "#C6DBEF", "#9ECAE1", "#6BAED6",
		"#4292C6", "#2171B5", "#08519C", "#08306B",
	},
	"greens": {
		"#F7FCF5", "#E5F5E0", "#C7E9C0", "#A1D99B", "#74C476",
		"#41AB5D", "#238B45", "#006D2C", "#00441B",
	},
	"reds": {
		"#FFF5F0", "#FEE0D2", "#FCBBA1", "#FC9272", "#FB6A4A",
		"#EF3B2C", "#CB181D", "#A50F15", "#67000D",
	},
}

// rampSamples is the number of resampled gradient stops. Enough that the
// piecewise-RGB gradient between them is indistinguishable from the Lab
// curve.
const rampSamples = 32

// Ramp returns the named continuous color ramp.
//
// Recognized names: "viridis", "magma", "blues", "greens", "reds".
func Ramp(name string) (palette.Continuous, error) {
	stops, ok := rampStops[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}

	anchors := make([]colorful.Color, len(stops))
	for i, hex := range stops {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette %q stop %d: %w", name, i, err)
		}
		anchors[i] = c
	}

	colors := make([]color.RGBA, rampSamples)
	for i := range colors {
		t := float64(i) / float64(rampSamples-1)
		r, g, b := labAt(anchors, t).RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
	return palette.RGBGradient{Colors: colors}, nil
}

// labAt evaluates the ramp at t in [0, 1] by Lab-blending between the two
// surrounding anchors.
func labAt(anchors []colorful.Color, t float64) colorful.Color {
	if t <= 0 {
		return anchors[0]
	}
	if t >= 1 {
		return anchors[len(anchors)-1]
	}
	pos := t * float64(len(anchors)-1)
	i := int(pos)
	frac := pos - float64(i)
	return anchors[i].BlendLab(anchors[i+1], frac).Clamped()
}

// classColors samples n discrete class colors at class midpoints of the
// ramp.
func classColors(ramp palette.Continuous, n int) []color.NRGBA {
	if n < 1 {
		n = 1
	}
	out := make([]color.NRGBA, n)
	for i := range out {
		t := (float64(i) + 0.5) / float64(n)
		out[i] = toNRGBA(ramp.Map(t))
	}
	return out
}

// toNRGBA converts an opaque palette color to non-premultiplied RGBA.
func toNRGBA(c color.Color) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: 0xFF,
	}
}

// parseHexColor parses "#RRGGBB" into an opaque color.
func parseHexColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// hexString formats a color as "#RRGGBB"; alpha is carried separately as
// opacity everywhere colors are serialized.
func hexString(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
