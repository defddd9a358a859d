package loader

import (
	"encoding/json"
	"fmt"
	"os"
)

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []rawGeometry   `json:"geometries"`
}

type rawFeature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *rawGeometry           `json:"geometry"`
}

type rawDocument struct {
	Type        string          `json:"type"`
	Features    []rawFeature    `json:"features"`
	Geometry    *rawGeometry    `json:"geometry"`
	Properties  map[string]interface{} `json:"properties"`
	ID          interface{}     `json:"id"`
	Coordinates json.RawMessage `json:"coordinates"`
	CRS         *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// LoadGeoJSON reads and parses a GeoJSON file.
func LoadGeoJSON(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON parses a GeoJSON document: a FeatureCollection, a single
// Feature, or a bare geometry.
func ParseGeoJSON(data []byte) (Collection, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Collection{}, fmt.Errorf("invalid geojson: %w", err)
	}

	var c Collection
	if doc.CRS != nil {
		c.CRS = doc.CRS.Properties.Name
	}

	switch doc.Type {
	case "FeatureCollection":
		for i, rf := range doc.Features {
			f, err := convertFeature(rf)
			if err != nil {
				return Collection{}, fmt.Errorf("feature %d: %w", i, err)
			}
			c.Features = append(c.Features, f)
		}
	case "Feature":
		f, err := convertFeature(rawFeature{
			ID:         doc.ID,
			Properties: doc.Properties,
			Geometry:   doc.Geometry,
		})
		if err != nil {
			return Collection{}, err
		}
		c.Features = append(c.Features, f)
	case "":
		return Collection{}, fmt.Errorf("invalid geojson: missing type")
	default:
		// Bare geometry document.
		g, err := convertGeometry(rawGeometry{Type: doc.Type, Coordinates: doc.Coordinates})
		if err != nil {
			return Collection{}, err
		}
		c.Features = append(c.Features, Feature{
			Properties: map[string]interface{}{},
			Geometry:   g,
		})
	}

	if len(c.Features) == 0 {
		return Collection{}, fmt.Errorf("no features found in geojson")
	}
	return c, nil
}

func convertFeature(rf rawFeature) (Feature, error) {
	if rf.Geometry == nil {
		return Feature{}, fmt.Errorf("feature has no geometry")
	}
	g, err := convertGeometry(*rf.Geometry)
	if err != nil {
		return Feature{}, err
	}

	props := rf.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	if rf.ID != nil {
		if _, exists := props["id"]; !exists {
			props["id"] = rf.ID
		}
	}
	return Feature{Properties: props, Geometry: g}, nil
}

func convertGeometry(rg rawGeometry) (Geometry, error) {
	switch rg.Type {
	case "Point":
		var pt []float64
		if err := json.Unmarshal(rg.Coordinates, &pt); err != nil {
			return Geometry{}, fmt.Errorf("point coordinates: %w", err)
		}
		return Geometry{Type: "Point", Rings: [][][]float64{{pt}}}, nil

	case "MultiPoint":
		var pts [][]float64
		if err := json.Unmarshal(rg.Coordinates, &pts); err != nil {
			return Geometry{}, fmt.Errorf("multipoint coordinates: %w", err)
		}
		return Geometry{Type: "Point", Rings: [][][]float64{pts}}, nil

	case "LineString":
		var path [][]float64
		if err := json.Unmarshal(rg.Coordinates, &path); err != nil {
			return Geometry{}, fmt.Errorf("linestring coordinates: %w", err)
		}
		return Geometry{Type: "LineString", Rings: [][][]float64{path}}, nil

	case "MultiLineString":
		var paths [][][]float64
		if err := json.Unmarshal(rg.Coordinates, &paths); err != nil {
			return Geometry{}, fmt.Errorf("multilinestring coordinates: %w", err)
		}
		return Geometry{Type: "LineString", Rings: paths}, nil

	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(rg.Coordinates, &rings); err != nil {
			return Geometry{}, fmt.Errorf("polygon coordinates: %w", err)
		}
		return Geometry{Type: "Polygon", Rings: normalizePolygon(rings)}, nil

	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(rg.Coordinates, &polys); err != nil {
			return Geometry{}, fmt.Errorf("multipolygon coordinates: %w", err)
		}
		var rings [][][]float64
		for _, poly := range polys {
			rings = append(rings, normalizePolygon(poly)...)
		}
		return Geometry{Type: "MultiPolygon", Rings: rings}, nil

	default:
		return Geometry{}, fmt.Errorf("unsupported geometry type %q", rg.Type)
	}
}
