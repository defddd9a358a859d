package thema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderInteractive(t *testing.T) {
	ds := testDataset(t, map[string]interface{}{"A": 10.0, "B": 20.0})

	spec := DefaultStyleSpec()
	spec.Variable = "rate"
	spec.Title = "Rates by area"
	spec.Credits = "test data"
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	artifact, err := Render(ds, style, ModeInteractive)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if artifact.Kind != ArtifactHTML {
		t.Fatalf("Expected HTML artifact, got %q", artifact.Kind)
	}
	if artifact.Width != 0 || artifact.Height != 0 {
		t.Errorf("Expected zero dimensions for interactive document")
	}

	doc := string(artifact.Data)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"leaflet@1.9.4",
		"L.tileLayer",
		"fitBounds",
		"L.geoJSON",
		"Rates by area",
		"test data",
		`"type":"FeatureCollection"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected document to contain %q", want)
		}
	}
}

func TestInteractiveLegendPosition(t *testing.T) {
	ds := testDataset(t, map[string]interface{}{"A": 10.0})

	spec := DefaultStyleSpec()
	spec.Variable = "rate"
	spec.LegendPosition = "topright"
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	artifact, err := Render(ds, style, ModeInteractive)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	doc := string(artifact.Data)
	if !strings.Contains(doc, "var legend = L.control({position: 'topright'});") {
		t.Errorf("Expected legend control anchored top right")
	}

	// An unset position falls back to the lower right.
	style.Legend.Position = ""
	artifact, err = Render(ds, style, ModeInteractive)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(artifact.Data), "var legend = L.control({position: 'bottomright'});") {
		t.Errorf("Expected legend control to default to bottom right")
	}
}

func TestInteractiveFeatureProperties(t *testing.T) {
	ds := testDataset(t, map[string]interface{}{"A": 10.0})

	spec := DefaultStyleSpec()
	spec.Variable = "rate"
	spec.MissingColor = "#FF00FF"
	spec.MissingOpacity = 1
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Joined entry: fill from the ramp, value present
	gf, ok := entryGeoJSON(ds.Entries[0], style)
	if !ok {
		t.Fatalf("Expected feature for entry A")
	}
	if gf.Properties["__hasData"] != true {
		t.Errorf("Expected __hasData true")
	}
	if gf.Properties["__value"] != 10.0 {
		t.Errorf("Expected __value 10, got %v", gf.Properties["__value"])
	}
	if gf.Properties["key"] != "A" {
		t.Errorf("Expected key A, got %v", gf.Properties["key"])
	}
	if gf.Properties["rate"] != 10.0 {
		t.Errorf("Expected joined rate property, got %v", gf.Properties["rate"])
	}

	// Missing entry: exact fallback fill, no value
	gf, ok = entryGeoJSON(ds.Entries[1], style)
	if !ok {
		t.Fatalf("Expected feature for entry B")
	}
	if gf.Properties["__hasData"] != false {
		t.Errorf("Expected __hasData false")
	}
	if gf.Properties["__fill"] != "#ff00ff" && gf.Properties["__fill"] != "#FF00FF" {
		t.Errorf("Expected fallback fill, got %v", gf.Properties["__fill"])
	}
	if _, ok := gf.Properties["__value"]; ok {
		t.Errorf("Expected no __value for missing entry")
	}
}

func TestGeometryGeoJSONTypes(t *testing.T) {
	cases := []struct {
		name string
		geom Geometry
		want string
	}{
		{"point", NewPoint(1, 2), "Point"},
		{"multipoint", Geometry{Type: GeometryPoint, Rings: [][][]float64{{{1, 2}, {3, 4}}}}, "MultiPoint"},
		{"linestring", NewLineString([][]float64{{0, 0}, {1, 1}}), "LineString"},
		{"multilinestring", Geometry{Type: GeometryLineString, Rings: [][][]float64{
			{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}},
		}}, "MultiLineString"},
		{"polygon", NewPolygon([][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}), "Polygon"},
		{"multipolygon", Geometry{Type: GeometryMultiPolygon, Rings: [][][]float64{
			{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
			{{5, 5}, {6, 5}, {6, 6}, {5, 5}},
		}}, "MultiPolygon"},
	}
	for _, tc := range cases {
		geom, ok := geometryGeoJSON(tc.geom)
		if !ok {
			t.Errorf("%s: expected geometry", tc.name)
			continue
		}
		if geom.Type != tc.want {
			t.Errorf("%s: expected type %s, got %s", tc.name, tc.want, geom.Type)
		}
	}

	if _, ok := geometryGeoJSON(Geometry{}); ok {
		t.Errorf("Expected no geometry for empty input")
	}
}

func TestMarshalGeoJSONRoundTrip(t *testing.T) {
	fc := testFeatures("A", "B")

	data, err := MarshalGeoJSON(fc)
	if err != nil {
		t.Fatalf("MarshalGeoJSON failed: %v", err)
	}

	back, err := ParseFeatures("roundtrip", data)
	if err != nil {
		t.Fatalf("ParseFeatures failed: %v", err)
	}
	if len(back.Features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(back.Features))
	}
	if back.Features[0].Properties["id"] != "A" {
		t.Errorf("Expected property id A, got %v", back.Features[0].Properties["id"])
	}
	if back.Features[0].Geometry.Type != GeometryPolygon {
		t.Errorf("Expected polygon geometry, got %v", back.Features[0].Geometry.Type)
	}
}

func TestLegendHTML(t *testing.T) {
	ds := testDataset(t, map[string]interface{}{"A": 10.0, "B": 20.0})

	// Discrete legend: one swatch per class
	spec := DefaultStyleSpec()
	spec.Variable = "rate"
	spec.Breaks = []float64{0, 15, 25}
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	markup := legendHTML(style)
	if got := strings.Count(markup, "<i "); got != 2 {
		t.Errorf("Expected 2 swatches, got %d in %q", got, markup)
	}

	// Continuous legend: gradient ramp with the domain ends
	spec.Breaks = nil
	style, err = Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	markup = legendHTML(style)
	if !strings.Contains(markup, "linear-gradient") {
		t.Errorf("Expected gradient in continuous legend: %q", markup)
	}

	// Escaping: a hostile variable name must not reach the markup raw
	style.Legend.Title = `<script>alert(1)</script>`
	markup = legendHTML(style)
	if strings.Contains(markup, "<script>") {
		t.Errorf("Legend title not escaped: %q", markup)
	}
}

func TestInteractiveGeoJSONPayload(t *testing.T) {
	ds := testDataset(t, map[string]interface{}{"A": 10.0})

	spec := DefaultStyleSpec()
	spec.Variable = "rate"
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	artifact, err := Render(ds, style, ModeInteractive)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// The embedded payload must be valid JSON with one feature per entry
	doc := string(artifact.Data)
	start := strings.Index(doc, `{"type":"FeatureCollection"`)
	if start < 0 {
		t.Fatalf("Embedded GeoJSON not found")
	}
	end := strings.Index(doc[start:], "\n")
	payload := doc[start:]
	if end >= 0 {
		payload = doc[start : start+end]
	}
	payload = strings.TrimRight(strings.TrimSpace(payload), ";")

	var parsed struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		t.Fatalf("Embedded GeoJSON does not parse: %v", err)
	}
	if len(parsed.Features) != 3 {
		t.Errorf("Expected 3 features, got %d", len(parsed.Features))
	}
}
