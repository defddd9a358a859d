package thema

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	textColor  = color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	panelColor = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xE6}
	frameColor = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
)

// drawAnnotations overlays title, legend, scale bar, north arrow, and
// credits onto a painted map surface.
func drawAnnotations(img *image.RGBA, proj projection, style ResolvedStyle) {
	if style.Title != "" {
		drawTitle(img, style.Title)
	}
	if style.Legend.Show {
		drawLegend(img, style)
	}
	if style.ScaleBar.Show {
		drawScaleBar(img, proj, style.ScaleBar.BreaksKm)
	}
	if style.Compass {
		drawCompass(img)
	}
	if style.Credits != "" {
		drawCredits(img, style.Credits)
	}
}

func drawText(img *image.RGBA, x, y int, s string, col color.NRGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.NRGBA) {
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func frameRect(img *image.RGBA, r image.Rectangle, col color.NRGBA) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

func drawTitle(img *image.RGBA, title string) {
	// Double-strike for a slightly heavier face.
	drawText(img, 10, 16, title, textColor)
	drawText(img, 11, 16, title, textColor)
}

func drawCredits(img *image.RGBA, credits string) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	drawText(img, w-8-textWidth(credits), h-6, credits, frameColor)
}

const (
	legendPad    = 8
	legendSwatch = 14
	legendRow    = 18
	legendBarH   = 100
	legendBarW   = 12
)

func drawLegend(img *image.RGBA, style ResolvedStyle) {
	leg := style.Legend

	var boxW, boxH int
	if leg.Continuous {
		labelW := 0
		for _, l := range leg.Labels {
			if lw := textWidth(l); lw > labelW {
				labelW = lw
			}
		}
		boxW = legendPad*2 + legendBarW + 6 + labelW
		boxH = legendPad*2 + legendBarH + legendRow
	} else {
		labelW := 0
		for _, l := range leg.Labels {
			if lw := textWidth(l); lw > labelW {
				labelW = lw
			}
		}
		boxW = legendPad*2 + legendSwatch + 6 + labelW
		boxH = legendPad*2 + legendRow*len(leg.Labels) + legendRow
	}
	if tw := textWidth(leg.Title) + 2*legendPad; tw > boxW {
		boxW = tw
	}

	x0, y0 := cornerOrigin(img, leg.Position, boxW, boxH)
	box := image.Rect(x0, y0, x0+boxW, y0+boxH)
	fillRect(img, box, panelColor)
	frameRect(img, box, frameColor)

	drawText(img, x0+legendPad, y0+legendPad+10, leg.Title, textColor)

	if leg.Continuous {
		barX := x0 + legendPad
		barY := y0 + legendPad + legendRow
		// Top of the bar is the domain maximum.
		for row := 0; row < legendBarH; row++ {
			t := 1 - float64(row)/float64(legendBarH-1)
			c := toNRGBA(style.Ramp.Map(t))
			fillRect(img, image.Rect(barX, barY+row, barX+legendBarW, barY+row+1), c)
		}
		frameRect(img, image.Rect(barX, barY, barX+legendBarW, barY+legendBarH), frameColor)
		if len(leg.Labels) == 2 {
			drawText(img, barX+legendBarW+6, barY+10, leg.Labels[1], textColor)
			drawText(img, barX+legendBarW+6, barY+legendBarH-2, leg.Labels[0], textColor)
		}
		return
	}

	for i, label := range leg.Labels {
		rowY := y0 + legendPad + legendRow*(i+1)
		sw := image.Rect(x0+legendPad, rowY, x0+legendPad+legendSwatch, rowY+legendSwatch)
		fillRect(img, sw, leg.Swatches[i])
		frameRect(img, sw, frameColor)
		drawText(img, x0+legendPad+legendSwatch+6, rowY+legendSwatch-3, label, textColor)
	}
}

// cornerOrigin computes the top-left origin of an annotation box anchored
// at a named corner.
func cornerOrigin(img *image.RGBA, position string, boxW, boxH int) (int, int) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	const inset = 10
	switch position {
	case "topleft":
		return inset, inset + 12
	case "topright":
		return w - inset - boxW, inset + 12
	case "bottomleft":
		return inset, h - inset - boxH
	default: // bottomright
		return w - inset - boxW, h - inset - boxH
	}
}

func drawScaleBar(img *image.RGBA, proj projection, breaksKm []float64) {
	kmPerPx := proj.kmPerPixel()
	if kmPerPx <= 0 || math.IsInf(kmPerPx, 0) || math.IsNaN(kmPerPx) {
		return
	}
	if len(breaksKm) == 0 {
		total := niceKm(kmPerPx * 140)
		breaksKm = []float64{total / 2, total}
	}

	h := img.Bounds().Dy()
	x0 := 12
	y0 := h - 22
	barH := 6

	prevPx := 0
	for i, km := range breaksKm {
		px := int(km / kmPerPx)
		seg := image.Rect(x0+prevPx, y0, x0+px, y0+barH)
		if i%2 == 0 {
			fillRect(img, seg, textColor)
		} else {
			fillRect(img, seg, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
		}
		frameRect(img, seg, textColor)
		label := trimFloat(km) + " km"
		drawText(img, x0+px-textWidth(label)/2, y0-3, label, textColor)
		prevPx = px
	}
	drawText(img, x0-4, y0-3, "0", textColor)
}

// niceKm rounds a distance up to a 1, 2, or 5 multiple of a power of ten.
func niceKm(km float64) float64 {
	if km <= 0 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(km)))
	switch {
	case km/mag <= 1:
		return mag
	case km/mag <= 2:
		return 2 * mag
	case km/mag <= 5:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func drawCompass(img *image.RGBA) {
	w := img.Bounds().Dx()
	cx := float64(w - 26)
	top := 26.0

	// North-arrow triangle, filled by scanline.
	for y := int(top); y <= int(top+28); y++ {
		t := (float64(y) - top) / 28
		half := 9 * t
		fillRect(img, image.Rect(int(cx-half), y, int(cx+half)+1, y+1), textColor)
	}
	drawText(img, int(cx)-3, int(top)+42, "N", textColor)
}
