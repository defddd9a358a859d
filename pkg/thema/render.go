package thema

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"go.uber.org/zap"
	"golang.org/x/image/vector"
)

// mapMargin is the pixel margin kept between the projected data and the
// image edge, leaving room for annotations.
const mapMargin = 24

// maxSurface is the largest supported static surface dimension.
const maxSurface = 8192

// projection maps geographic coordinates to pixel positions using an
// equirectangular projection with latitude correction: one degree of
// longitude is scaled by cos(mid-latitude) so shapes keep a plausible
// aspect away from the equator. Display projection only; coordinates stay
// in the dataset's CRS.
type projection struct {
	b      Bounds
	cosLat float64
	scale  float64 // pixels per degree of latitude
	offX   float64
	offY   float64
}

func newProjection(b Bounds, width, height int) projection {
	midLat := (b.MinLat + b.MaxLat) / 2
	cosLat := math.Cos(midLat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}

	effW := b.Width() * cosLat
	effH := b.Height()
	availW := float64(width - 2*mapMargin)
	availH := float64(height - 2*mapMargin)

	var scale float64
	switch {
	case effW <= 0 && effH <= 0:
		scale = 1 // single point; any scale centers it
	case effW <= 0:
		scale = availH / effH
	case effH <= 0:
		scale = availW / effW
	default:
		scale = math.Min(availW/effW, availH/effH)
	}

	return projection{
		b:      b,
		cosLat: cosLat,
		scale:  scale,
		offX:   mapMargin + (availW-effW*scale)/2,
		offY:   mapMargin + (availH-effH*scale)/2,
	}
}

// xy projects (lon, lat) to pixel coordinates. The y axis is flipped:
// north is up.
func (p projection) xy(lon, lat float64) (float64, float64) {
	x := p.offX + (lon-p.b.MinLon)*p.cosLat*p.scale
	y := p.offY + (p.b.MaxLat-lat)*p.scale
	return x, y
}

// kmPerPixel approximates ground distance per pixel at the projection's
// mid-latitude.
func (p projection) kmPerPixel() float64 {
	// One degree of latitude is ~111.32 km everywhere.
	return 111.32 / p.scale
}

// renderStatic paints the dataset onto a raster surface and encodes it as
// PNG.
func renderStatic(ds ThematicDataset, style ResolvedStyle, opts RenderOptions) (MapArtifact, error) {
	if err := checkSurface(opts); err != nil {
		return MapArtifact{}, err
	}
	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "static", Reason: fmt.Sprintf("background color: %v", err)}
	}

	entries, bounds := visibleEntries(ds, opts)
	if len(entries) == 0 {
		return MapArtifact{}, &EmptyGeometryError{}
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	proj := newProjection(bounds, opts.Width, opts.Height)

	for _, e := range entries {
		paintEntry(img, proj, e, style)
	}

	drawAnnotations(img, proj, style)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "static", Reason: fmt.Sprintf("png encode: %v", err)}
	}

	if opts.Logger != nil {
		opts.Logger.Debug("rendered static map",
			zap.Int("features", len(entries)),
			zap.Int("width", opts.Width),
			zap.Int("height", opts.Height))
	}

	return MapArtifact{
		Kind:   ArtifactPNG,
		Data:   buf.Bytes(),
		Width:  opts.Width,
		Height: opts.Height,
		Bounds: bounds,
	}, nil
}

func checkSurface(opts RenderOptions) error {
	if opts.Width < 64 || opts.Height < 64 {
		return &RenderBackendError{Mode: "static",
			Reason: fmt.Sprintf("surface %dx%d too small (minimum 64x64)", opts.Width, opts.Height)}
	}
	if opts.Width > maxSurface || opts.Height > maxSurface {
		return &RenderBackendError{Mode: "static",
			Reason: fmt.Sprintf("surface %dx%d exceeds %dx%d", opts.Width, opts.Height, maxSurface, maxSurface)}
	}
	return nil
}

// visibleEntries clips the dataset to the requested extent, preserving
// input order. With no extent the full dataset is used.
func visibleEntries(ds ThematicDataset, opts RenderOptions) ([]ThematicEntry, Bounds) {
	if opts.Extent == nil {
		return ds.Entries, ds.Bounds()
	}
	idx := NewFeatureIndex(ds)
	return idx.Search(*opts.Extent), *opts.Extent
}

func paintEntry(img *image.RGBA, proj projection, e ThematicEntry, style ResolvedStyle) {
	fill, _ := style.FillFor(e)

	switch e.Feature.Geometry.Type {
	case GeometryPolygon:
		rings := orientRings(e.Feature.Geometry.Rings)
		fillRings(img, proj, rings, fill)
		for _, ring := range rings {
			strokePath(img, proj, ring, style.BorderWidth, style.Border, true)
		}
	case GeometryMultiPolygon:
		rings := e.Feature.Geometry.Rings
		fillRings(img, proj, rings, fill)
		for _, ring := range rings {
			strokePath(img, proj, ring, style.BorderWidth, style.Border, true)
		}
	case GeometryLineString:
		for _, path := range e.Feature.Geometry.Rings {
			strokePath(img, proj, path, style.LineWidth, fill, false)
		}
	case GeometryPoint:
		if len(e.Feature.Geometry.Rings) == 0 {
			return
		}
		for _, pt := range e.Feature.Geometry.Rings[0] {
			if len(pt) >= 2 {
				x, y := proj.xy(pt[0], pt[1])
				fillDisc(img, x, y, style.PointRadius, fill)
			}
		}
	}
}

// orientRings normalizes a polygon's winding so the rasterizer's coverage
// accumulation treats the first ring as the boundary and later rings as
// holes: outer counter-clockwise, holes clockwise (in geographic y-up
// coordinates).
func orientRings(rings [][][]float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		wantCCW := i == 0
		if (signedArea(ring) > 0) == wantCCW {
			out[i] = ring
			continue
		}
		rev := make([][]float64, len(ring))
		for j, pt := range ring {
			rev[len(ring)-1-j] = pt
		}
		out[i] = rev
	}
	return out
}

func signedArea(ring [][]float64) float64 {
	var sum float64
	for i := 0; i < len(ring); i++ {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		if len(a) < 2 || len(b) < 2 {
			continue
		}
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// fillRings rasterizes all rings as one path. Rings wound opposite to the
// outer boundary cancel and leave holes.
func fillRings(img *image.RGBA, proj projection, rings [][][]float64, fill color.NRGBA) {
	if fill.A == 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over

	painted := false
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		first := true
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			x, y := proj.xy(pt[0], pt[1])
			if first {
				z.MoveTo(float32(x), float32(y))
				first = false
			} else {
				z.LineTo(float32(x), float32(y))
			}
		}
		if !first {
			z.ClosePath()
			painted = true
		}
	}
	if painted {
		z.Draw(img, img.Bounds(), image.NewUniform(fill), image.Point{})
	}
}

// strokePath draws a line path with the given pixel width by rasterizing
// one quad per segment plus a disc at each interior joint.
func strokePath(img *image.RGBA, proj projection, pts [][]float64, width float64, col color.NRGBA, closed bool) {
	if col.A == 0 || width <= 0 || len(pts) < 2 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	half := width / 2

	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if len(a) < 2 || len(b) < 2 {
			continue
		}
		ax, ay := proj.xy(a[0], a[1])
		bx, by := proj.xy(b[0], b[1])
		dx, dy := bx-ax, by-ay
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		// Unit normal.
		nx, ny := -dy/length*half, dx/length*half
		z.MoveTo(float32(ax+nx), float32(ay+ny))
		z.LineTo(float32(bx+nx), float32(by+ny))
		z.LineTo(float32(bx-nx), float32(by-ny))
		z.LineTo(float32(ax-nx), float32(ay-ny))
		z.ClosePath()
		if width >= 3 && i > 0 {
			addCirclePath(z, ax, ay, half)
		}
	}
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

// fillDisc draws a filled circle of the given pixel radius.
func fillDisc(img *image.RGBA, cx, cy, r float64, col color.NRGBA) {
	if col.A == 0 || r <= 0 {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	addCirclePath(z, cx, cy, r)
	z.Draw(img, img.Bounds(), image.NewUniform(col), image.Point{})
}

const circleSegments = 24

func addCirclePath(z *vector.Rasterizer, cx, cy, r float64) {
	for i := 0; i <= circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		x := cx + r*math.Cos(theta)
		y := cy + r*math.Sin(theta)
		if i == 0 {
			z.MoveTo(float32(x), float32(y))
		} else {
			z.LineTo(float32(x), float32(y))
		}
	}
	z.ClosePath()
}
