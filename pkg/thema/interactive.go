package thema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// geoJSONDoc mirrors the GeoJSON structure the client-side renderer
// consumes.
type geoJSONDoc struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   geoJSONGeometry        `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// MarshalGeoJSON encodes a FeatureCollection as a GeoJSON
// FeatureCollection document. Multi-part geometries are written back as
// their GeoJSON multi types.
func MarshalGeoJSON(fc FeatureCollection) ([]byte, error) {
	doc := geoJSONDoc{Type: "FeatureCollection", Features: []geoJSONFeature{}}
	for _, f := range fc.Features {
		geom, ok := geometryGeoJSON(f.Geometry)
		if !ok {
			continue
		}
		props := f.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		doc.Features = append(doc.Features, geoJSONFeature{
			Type:       "Feature",
			Properties: props,
			Geometry:   geom,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// renderInteractive produces a self-contained HTML document: the thematic
// dataset embedded as GeoJSON, per-feature fills precomputed from the
// resolved style, the legend as static markup, and a tile basemap
// referenced from an external provider. Feature drawing itself is deferred
// to the client-side renderer.
func renderInteractive(ds ThematicDataset, style ResolvedStyle, opts RenderOptions) (MapArtifact, error) {
	entries, bounds := visibleEntries(ds, opts)
	if len(entries) == 0 {
		return MapArtifact{}, &EmptyGeometryError{}
	}

	doc := geoJSONDoc{Type: "FeatureCollection"}
	for _, e := range entries {
		gf, ok := entryGeoJSON(e, style)
		if !ok {
			continue
		}
		doc.Features = append(doc.Features, gf)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "interactive", Reason: fmt.Sprintf("encode dataset: %v", err)}
	}

	data := interactiveData{
		Title:          style.Title,
		Variable:       style.Variable,
		Credits:        style.Credits,
		TileURL:        opts.TileURL,
		Attribution:    template.HTML(opts.TileAttribution),
		GeoJSON:        template.JS(payload),
		Legend:         template.HTML(legendHTML(style)),
		ShowLegend:     style.Legend.Show,
		LegendPosition: legendPosition(style.Legend.Position),
		MinLat:         bounds.MinLat,
		MinLon:         bounds.MinLon,
		MaxLat:         bounds.MaxLat,
		MaxLon:         bounds.MaxLon,
		BorderColor:    hexString(style.Border),
		BorderWidth:    style.BorderWidth,
		PointRadius:    style.PointRadius,
	}

	var buf bytes.Buffer
	if err := interactiveTemplate.Execute(&buf, data); err != nil {
		return MapArtifact{}, &RenderBackendError{Mode: "interactive", Reason: fmt.Sprintf("execute template: %v", err)}
	}

	return MapArtifact{
		Kind:   ArtifactHTML,
		Data:   buf.Bytes(),
		Bounds: bounds,
	}, nil
}

// entryGeoJSON converts one entry to a GeoJSON feature carrying both its
// joined values and the precomputed style properties the client reads.
func entryGeoJSON(e ThematicEntry, style ResolvedStyle) (geoJSONFeature, bool) {
	geom, ok := geometryGeoJSON(e.Feature.Geometry)
	if !ok {
		return geoJSONFeature{}, false
	}

	props := make(map[string]interface{}, len(e.Values)+5)
	for k, v := range e.Values {
		props[k] = v
	}
	props["key"] = e.Key

	fill, hasData := style.FillFor(e)
	props["__fill"] = hexString(fill)
	props["__fillOpacity"] = float64(fill.A) / 255
	props["__hasData"] = hasData
	if v, ok := e.Value(style.Variable); ok {
		props["__value"] = v
	}

	return geoJSONFeature{
		Type:       "Feature",
		Properties: props,
		Geometry:   geom,
	}, true
}

func geometryGeoJSON(g Geometry) (geoJSONGeometry, bool) {
	if g.Empty() {
		return geoJSONGeometry{}, false
	}
	switch g.Type {
	case GeometryPoint:
		if len(g.Rings[0]) > 1 {
			return geoJSONGeometry{Type: "MultiPoint", Coordinates: g.Rings[0]}, true
		}
		return geoJSONGeometry{Type: "Point", Coordinates: g.Rings[0][0]}, true
	case GeometryLineString:
		if len(g.Rings) > 1 {
			return geoJSONGeometry{Type: "MultiLineString", Coordinates: g.Rings}, true
		}
		return geoJSONGeometry{Type: "LineString", Coordinates: g.Rings[0]}, true
	case GeometryPolygon:
		return geoJSONGeometry{Type: "Polygon", Coordinates: g.Rings}, true
	case GeometryMultiPolygon:
		return geoJSONGeometry{Type: "MultiPolygon", Coordinates: groupRings(g.Rings)}, true
	default:
		return geoJSONGeometry{}, false
	}
}

// groupRings splits a flattened multipolygon ring list back into
// per-polygon ring sets: a counter-clockwise ring starts a polygon, the
// clockwise rings that follow it are its holes.
func groupRings(rings [][][]float64) [][][][]float64 {
	var polys [][][][]float64
	for _, ring := range rings {
		if signedArea(ring) > 0 || len(polys) == 0 {
			polys = append(polys, [][][]float64{ring})
		} else {
			polys[len(polys)-1] = append(polys[len(polys)-1], ring)
		}
	}
	return polys
}

// legendHTML renders the resolved legend as static markup embedded in the
// document.
func legendHTML(style ResolvedStyle) string {
	if !style.Legend.Show {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>%s</strong><br>", template.HTMLEscapeString(style.Legend.Title))

	if style.Legend.Continuous {
		const stops = 6
		css := make([]string, stops)
		for i := 0; i < stops; i++ {
			t := float64(i) / float64(stops-1)
			css[i] = hexString(toNRGBA(style.Ramp.Map(t)))
		}
		fmt.Fprintf(&b,
			`<div class="ramp" style="background:linear-gradient(to top,%s)"></div>`,
			strings.Join(css, ","))
		if len(style.Legend.Labels) == 2 {
			fmt.Fprintf(&b, `<div class="ramp-labels"><span>%s</span><span>%s</span></div>`,
				template.HTMLEscapeString(style.Legend.Labels[1]),
				template.HTMLEscapeString(style.Legend.Labels[0]))
		}
		return b.String()
	}

	for i, label := range style.Legend.Labels {
		fmt.Fprintf(&b,
			`<div><i style="background:%s"></i>%s</div>`,
			hexString(style.Legend.Swatches[i]),
			template.HTMLEscapeString(label))
	}
	return b.String()
}

type interactiveData struct {
	Title          string
	Variable       string
	Credits        string
	TileURL        string
	Attribution    template.HTML
	GeoJSON        template.JS
	Legend         template.HTML
	ShowLegend     bool
	LegendPosition string
	MinLat         float64
	MinLon         float64
	MaxLat         float64
	MaxLon         float64
	BorderColor    string
	BorderWidth    float64
	PointRadius    float64
}

// legendPosition maps a resolved corner name onto the Leaflet control
// positions, defaulting to the lower right.
func legendPosition(pos string) string {
	switch pos {
	case "topleft", "topright", "bottomleft", "bottomright":
		return pos
	}
	return "bottomright"
}

var interactiveTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{if .Title}}{{.Title}}{{else}}Thematic map{{end}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%; margin: 0; }
.map-title { font: bold 15px/1.4 sans-serif; background: rgba(255,255,255,.9); padding: 4px 10px; border-radius: 4px; }
.legend { font: 11px/1.5 sans-serif; background: rgba(255,255,255,.9); padding: 8px 10px; border-radius: 4px; }
.legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; border: 1px solid #888; }
.legend .ramp { width: 14px; height: 90px; border: 1px solid #888; float: left; margin-right: 6px; }
.legend .ramp-labels { display: flex; flex-direction: column; justify-content: space-between; height: 92px; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map');
map.fitBounds([[{{.MinLat}}, {{.MinLon}}], [{{.MaxLat}}, {{.MaxLon}}]]);

L.tileLayer({{.TileURL}}, {
	attribution: '{{.Attribution}}'
}).addTo(map);

var data = {{.GeoJSON}};

L.geoJSON(data, {
	style: function (f) {
		return {
			fillColor: f.properties.__fill,
			fillOpacity: f.properties.__fillOpacity,
			color: {{.BorderColor}},
			weight: {{.BorderWidth}}
		};
	},
	pointToLayer: function (f, latlng) {
		return L.circleMarker(latlng, {
			radius: {{.PointRadius}},
			fillColor: f.properties.__fill,
			fillOpacity: f.properties.__fillOpacity,
			color: {{.BorderColor}},
			weight: {{.BorderWidth}}
		});
	},
	onEachFeature: function (f, layer) {
		var label = '<strong>' + f.properties.key + '</strong>';
		if ('__value' in f.properties) {
			label += '<br>{{.Variable}}: ' + f.properties.__value;
		} else {
			label += '<br>no data';
		}
		layer.bindPopup(label);
	}
}).addTo(map);

{{if .Title}}
var title = L.control({position: 'topleft'});
title.onAdd = function () {
	var div = L.DomUtil.create('div', 'map-title');
	div.textContent = {{.Title}};
	return div;
};
title.addTo(map);
{{end}}

{{if .ShowLegend}}
var legend = L.control({position: '{{.LegendPosition}}'});
legend.onAdd = function () {
	var div = L.DomUtil.create('div', 'legend');
	div.innerHTML = '{{.Legend}}';
	return div;
};
legend.addTo(map);
{{end}}

{{if .Credits}}
map.attributionControl.addAttribution({{.Credits}});
{{end}}
</script>
</body>
</html>
`))
