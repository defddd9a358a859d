package thema

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sort"
)

// Layer pairs one thematic dataset with its resolved style and a stacking
// order for composite maps.
//
// Multi-layer maps stack independently joined and styled datasets on one
// surface: a polygon basemap under a point overlay, or administrative
// areas under a sampled grid. Layers with a lower ZOrder are painted
// first.
type Layer struct {
	Name    string
	Dataset ThematicDataset
	Style   ResolvedStyle
	ZOrder  int
}

// LayerSet composes multiple layers into a single static rendering
// request.
//
// All layers must share one coordinate reference system; mixing reference
// systems is a SchemaError, not a silent reprojection.
type LayerSet struct {
	Layers []*Layer
}

// Add appends a layer to the set.
func (ls *LayerSet) Add(layer *Layer) {
	ls.Layers = append(ls.Layers, layer)
}

// Bounds returns the bounding box covering every layer's dataset.
func (ls *LayerSet) Bounds() Bounds {
	var b Bounds
	for i, layer := range ls.Layers {
		lb := layer.Dataset.Bounds()
		if i == 0 {
			b = lb
		} else {
			b = b.Extend(lb)
		}
	}
	return b
}

// RenderLayers paints every layer of the set, in ascending ZOrder, onto
// one static raster surface. Annotations come from the topmost layer's
// style.
//
// Fails with EmptyGeometryError when no layer contributes a feature and
// with SchemaError when layers disagree on the coordinate reference
// system.
func RenderLayers(ls *LayerSet, opts RenderOptions) (MapArtifact, error) {
	opts = withRenderDefaults(opts)
	if err := checkSurface(opts); err != nil {
		return MapArtifact{}, err
	}

	total := 0
	for _, layer := range ls.Layers {
		total += len(layer.Dataset.Entries)
	}
	if total == 0 {
		return MapArtifact{}, &EmptyGeometryError{}
	}

	crs := ls.Layers[0].Dataset.CRS
	for _, layer := range ls.Layers[1:] {
		if !layer.Dataset.CRS.Equal(crs) {
			return MapArtifact{}, &SchemaError{
				Side: "layers",
				Cause: fmt.Sprintf("layer %q uses %s, expected %s",
					layer.Name, layer.Dataset.CRS, crs),
			}
		}
	}

	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "static", Reason: fmt.Sprintf("background color: %v", err)}
	}

	bounds := ls.Bounds()
	if opts.Extent != nil {
		bounds = *opts.Extent
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	proj := newProjection(bounds, opts.Width, opts.Height)

	ordered := make([]*Layer, len(ls.Layers))
	copy(ordered, ls.Layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZOrder < ordered[j].ZOrder })

	for _, layer := range ordered {
		entries := layer.Dataset.Entries
		if opts.Extent != nil {
			entries = NewFeatureIndex(layer.Dataset).Search(*opts.Extent)
		}
		for _, e := range entries {
			paintEntry(img, proj, e, layer.Style)
		}
	}

	if len(ordered) > 0 {
		drawAnnotations(img, proj, ordered[len(ordered)-1].Style)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "static", Reason: fmt.Sprintf("png encode: %v", err)}
	}

	return MapArtifact{
		Kind:   ArtifactPNG,
		Data:   buf.Bytes(),
		Width:  opts.Width,
		Height: opts.Height,
		Bounds: bounds,
	}, nil
}
