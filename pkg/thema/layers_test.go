package thema

import (
	"errors"
	"image/color"
	"testing"
)

// overlappingLayers builds two single-feature layers whose squares
// coincide, with distinct solid fills.
func overlappingLayers(t *testing.T) (*Layer, *Layer) {
	t.Helper()
	build := func(fill string) *Layer {
		fc := FeatureCollection{CRS: WGS84, Features: []Feature{{
			Geometry: NewPolygon([][][]float64{{
				{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
			}}),
			Properties: map[string]interface{}{"id": "sq"},
		}}}
		ds, err := Join(fc, []AttributeRow{{"id": "sq", "v": 1.0}}, "id")
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		// A one-class style paints the configured color everywhere
		c, err := parseHexColor(fill)
		if err != nil {
			t.Fatalf("parse %s: %v", fill, err)
		}
		return &Layer{
			Dataset: ds,
			Style: ResolvedStyle{
				Variable:    "v",
				Breaks:      []float64{0, 2},
				ClassColors: []color.NRGBA{c},
				FillOpacity: 1,
				Border:      c,
				BorderWidth: 1,
				Legend:      LegendSpec{},
			},
		}
	}
	return build("#FF0000"), build("#0000FF")
}

func TestRenderLayersZOrder(t *testing.T) {
	red, blue := overlappingLayers(t)
	red.Name, red.ZOrder = "red", 2
	blue.Name, blue.ZOrder = "blue", 1

	var ls LayerSet
	ls.Add(blue)
	ls.Add(red)

	artifact, err := RenderLayers(&ls, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("RenderLayers failed: %v", err)
	}
	img := decodePNG(t, artifact)

	// Red has the higher z-order, so it covers blue completely
	if n := countColor(img, color.NRGBA{R: 0xFF}); n < 100 {
		t.Errorf("Expected topmost red layer visible, found %d pixels", n)
	}
	if n := countColor(img, color.NRGBA{B: 0xFF}); n != 0 {
		t.Errorf("Expected blue layer fully covered, found %d pixels", n)
	}
}

func TestRenderLayersCRSMismatch(t *testing.T) {
	a, b := overlappingLayers(t)
	b.Dataset.CRS = CRS{Code: "EPSG:3857"}

	var ls LayerSet
	ls.Add(a)
	ls.Add(b)

	_, err := RenderLayers(&ls, DefaultRenderOptions())
	var schema *SchemaError
	if !errors.As(err, &schema) {
		t.Fatalf("Expected SchemaError, got %v", err)
	}
	if schema.Side != "layers" {
		t.Errorf("Expected side layers, got %q", schema.Side)
	}
}

func TestRenderLayersEmpty(t *testing.T) {
	var ls LayerSet
	_, err := RenderLayers(&ls, DefaultRenderOptions())
	var empty *EmptyGeometryError
	if !errors.As(err, &empty) {
		t.Fatalf("Expected EmptyGeometryError, got %v", err)
	}
}

func TestLayerSetBounds(t *testing.T) {
	a, _ := overlappingLayers(t)
	fc := FeatureCollection{CRS: WGS84, Features: []Feature{{
		Geometry:   NewPoint(50, 50),
		Properties: map[string]interface{}{"id": "p"},
	}}}
	ds, err := Join(fc, nil, "id")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	b := &Layer{Dataset: ds}

	var ls LayerSet
	ls.Add(a)
	ls.Add(b)

	bounds := ls.Bounds()
	want := Bounds{MinLon: 0, MinLat: 0, MaxLon: 50, MaxLat: 50}
	if bounds != want {
		t.Errorf("Expected bounds %v, got %v", want, bounds)
	}
}
