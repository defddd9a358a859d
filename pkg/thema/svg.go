package thema

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// renderSVG paints the dataset as a vector image. Geometry handling
// mirrors the raster path; holes are handled by the even-odd fill rule
// instead of winding accumulation.
func renderSVG(ds ThematicDataset, style ResolvedStyle, opts RenderOptions) (MapArtifact, error) {
	if err := checkSurface(opts); err != nil {
		return MapArtifact{}, err
	}

	entries, bounds := visibleEntries(ds, opts)
	if len(entries) == 0 {
		return MapArtifact{}, &EmptyGeometryError{}
	}

	proj := newProjection(bounds, opts.Width, opts.Height)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+opts.Background)

	if style.Legend.Show && style.Continuous {
		defineRampGradient(canvas, style)
	}

	for _, e := range entries {
		paintEntrySVG(canvas, proj, e, style)
	}

	if style.Title != "" {
		canvas.Text(10, 18, style.Title, "font-family:sans-serif;font-size:14px;font-weight:bold;fill:#222222")
	}
	if style.Legend.Show {
		drawLegendSVG(canvas, style, opts)
	}
	if style.ScaleBar.Show {
		drawScaleBarSVG(canvas, proj, style.ScaleBar.BreaksKm, opts)
	}
	if style.Compass {
		drawCompassSVG(canvas, opts)
	}
	if style.Credits != "" {
		canvas.Text(opts.Width-8, opts.Height-6, style.Credits,
			"font-family:sans-serif;font-size:9px;fill:#888888;text-anchor:end")
	}

	canvas.End()

	return MapArtifact{
		Kind:   ArtifactSVG,
		Data:   buf.Bytes(),
		Width:  opts.Width,
		Height: opts.Height,
		Bounds: bounds,
	}, nil
}

func paintEntrySVG(canvas *svg.SVG, proj projection, e ThematicEntry, style ResolvedStyle) {
	fill, _ := style.FillFor(e)

	switch e.Feature.Geometry.Type {
	case GeometryPolygon, GeometryMultiPolygon:
		d := ringPath(proj, e.Feature.Geometry.Rings)
		if d == "" {
			return
		}
		canvas.Path(d, fmt.Sprintf(
			"fill-rule:evenodd;%s;stroke:%s;stroke-width:%.1f",
			fillStyle(fill), hexString(style.Border), style.BorderWidth))

	case GeometryLineString:
		for _, path := range e.Feature.Geometry.Rings {
			xs, ys := projectInts(proj, path)
			if len(xs) < 2 {
				continue
			}
			canvas.Polyline(xs, ys, fmt.Sprintf(
				"fill:none;stroke:%s;stroke-opacity:%.3f;stroke-width:%.1f",
				hexString(fill), float64(fill.A)/255, style.LineWidth))
		}

	case GeometryPoint:
		if len(e.Feature.Geometry.Rings) == 0 {
			return
		}
		for _, pt := range e.Feature.Geometry.Rings[0] {
			if len(pt) < 2 {
				continue
			}
			x, y := proj.xy(pt[0], pt[1])
			canvas.Circle(int(math.Round(x)), int(math.Round(y)), int(style.PointRadius),
				fillStyle(fill)+";stroke:"+hexString(style.Border))
		}
	}
}

func fillStyle(c color.NRGBA) string {
	if c.A == 0 {
		return "fill:none"
	}
	return fmt.Sprintf("fill:%s;fill-opacity:%.3f", hexString(c), float64(c.A)/255)
}

func ringPath(proj projection, rings [][][]float64) string {
	var b strings.Builder
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		for j, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			x, y := proj.xy(pt[0], pt[1])
			if j == 0 {
				fmt.Fprintf(&b, "M%.1f %.1f", x, y)
			} else {
				fmt.Fprintf(&b, "L%.1f %.1f", x, y)
			}
		}
		b.WriteString("Z")
	}
	return b.String()
}

func projectInts(proj projection, pts [][]float64) ([]int, []int) {
	xs := make([]int, 0, len(pts))
	ys := make([]int, 0, len(pts))
	for _, pt := range pts {
		if len(pt) < 2 {
			continue
		}
		x, y := proj.xy(pt[0], pt[1])
		xs = append(xs, int(math.Round(x)))
		ys = append(ys, int(math.Round(y)))
	}
	return xs, ys
}

// rampGradientID names the legend gradient definition.
const rampGradientID = "ramp"

func defineRampGradient(canvas *svg.SVG, style ResolvedStyle) {
	const stops = 8
	oc := make([]svg.Offcolor, stops)
	for i := 0; i < stops; i++ {
		t := float64(i) / float64(stops-1)
		// Gradient runs top (max) to bottom (min).
		c := toNRGBA(style.Ramp.Map(1 - t))
		oc[i] = svg.Offcolor{
			Offset:  uint8(math.Round(t * 100)),
			Color:   hexString(c),
			Opacity: 1,
		}
	}
	canvas.Def()
	canvas.LinearGradient(rampGradientID, 0, 0, 0, 100, oc)
	canvas.DefEnd()
}

func drawLegendSVG(canvas *svg.SVG, style ResolvedStyle, opts RenderOptions) {
	leg := style.Legend
	const textStyle = "font-family:sans-serif;font-size:10px;fill:#222222"

	labelW := 0
	for _, l := range leg.Labels {
		if lw := 6 * len(l); lw > labelW {
			labelW = lw
		}
	}

	var boxW, boxH int
	if leg.Continuous {
		boxW = legendPad*2 + legendBarW + 6 + labelW
		boxH = legendPad*2 + legendBarH + legendRow
	} else {
		boxW = legendPad*2 + legendSwatch + 6 + labelW
		boxH = legendPad*2 + legendRow*len(leg.Labels) + legendRow
	}

	x0, y0 := cornerOriginSVG(opts, leg.Position, boxW, boxH)
	canvas.Rect(x0, y0, boxW, boxH, "fill:#FFFFFF;fill-opacity:0.9;stroke:#888888")
	canvas.Text(x0+legendPad, y0+legendPad+10, leg.Title, textStyle)

	if leg.Continuous {
		barX := x0 + legendPad
		barY := y0 + legendPad + legendRow
		canvas.Rect(barX, barY, legendBarW, legendBarH,
			fmt.Sprintf("fill:url(#%s);stroke:#888888", rampGradientID))
		if len(leg.Labels) == 2 {
			canvas.Text(barX+legendBarW+6, barY+10, leg.Labels[1], textStyle)
			canvas.Text(barX+legendBarW+6, barY+legendBarH-2, leg.Labels[0], textStyle)
		}
		return
	}

	for i, label := range leg.Labels {
		rowY := y0 + legendPad + legendRow*(i+1)
		canvas.Rect(x0+legendPad, rowY, legendSwatch, legendSwatch,
			"fill:"+hexString(leg.Swatches[i])+";stroke:#888888")
		canvas.Text(x0+legendPad+legendSwatch+6, rowY+legendSwatch-3, label, textStyle)
	}
}

func cornerOriginSVG(opts RenderOptions, position string, boxW, boxH int) (int, int) {
	const inset = 10
	switch position {
	case "topleft":
		return inset, inset + 12
	case "topright":
		return opts.Width - inset - boxW, inset + 12
	case "bottomleft":
		return inset, opts.Height - inset - boxH
	default:
		return opts.Width - inset - boxW, opts.Height - inset - boxH
	}
}

func drawScaleBarSVG(canvas *svg.SVG, proj projection, breaksKm []float64, opts RenderOptions) {
	kmPerPx := proj.kmPerPixel()
	if kmPerPx <= 0 || math.IsInf(kmPerPx, 0) || math.IsNaN(kmPerPx) {
		return
	}
	if len(breaksKm) == 0 {
		total := niceKm(kmPerPx * 140)
		breaksKm = []float64{total / 2, total}
	}

	const textStyle = "font-family:sans-serif;font-size:10px;fill:#222222"
	x0 := 12
	y0 := opts.Height - 22
	barH := 6

	prevPx := 0
	for i, km := range breaksKm {
		px := int(km / kmPerPx)
		seg := "fill:#222222;stroke:#222222"
		if i%2 == 1 {
			seg = "fill:#FFFFFF;stroke:#222222"
		}
		canvas.Rect(x0+prevPx, y0, px-prevPx, barH, seg)
		canvas.Text(x0+px, y0-3, trimFloat(km)+" km", textStyle+";text-anchor:middle")
		prevPx = px
	}
	canvas.Text(x0-4, y0-3, "0", textStyle)
}

func drawCompassSVG(canvas *svg.SVG, opts RenderOptions) {
	cx := opts.Width - 26
	xs := []int{cx, cx - 9, cx + 9}
	ys := []int{26, 54, 54}
	canvas.Polygon(xs, ys, "fill:#222222")
	canvas.Text(cx-3, 68, "N", "font-family:sans-serif;font-size:11px;fill:#222222")
}
