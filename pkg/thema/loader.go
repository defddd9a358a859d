package thema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/themalib/thema/internal/loader"
)

// LoadFeatures reads a geometry file into a FeatureCollection. The
// format is selected by file extension:
//
//	.geojson, .json   GeoJSON FeatureCollection, Feature, or geometry
//	.wkt              one WKT geometry per line
//	.csv              point table with lat/lon columns
//
// Failures are reported as *LoadError.
func LoadFeatures(path string) (FeatureCollection, error) {
	var (
		c   loader.Collection
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		c, err = loader.LoadGeoJSON(path)
	case ".wkt":
		c, err = loader.LoadWKT(path)
	case ".csv":
		c, err = loader.LoadPointsCSV(path)
	default:
		err = fmt.Errorf("unsupported feature format %q", ext)
	}
	if err != nil {
		return FeatureCollection{}, &LoadError{Path: path, Err: err}
	}
	fc, err := convertCollection(c)
	if err != nil {
		return FeatureCollection{}, &LoadError{Path: path, Err: err}
	}
	return fc, nil
}

// ParseFeatures decodes in-memory GeoJSON into a FeatureCollection.
// The name argument is used for error reporting only.
func ParseFeatures(name string, data []byte) (FeatureCollection, error) {
	c, err := loader.ParseGeoJSON(data)
	if err != nil {
		return FeatureCollection{}, &LoadError{Path: name, Err: err}
	}
	fc, err := convertCollection(c)
	if err != nil {
		return FeatureCollection{}, &LoadError{Path: name, Err: err}
	}
	return fc, nil
}

// LoadAttributeRows reads a CSV attribute table: the header row names
// the columns, each record becomes one AttributeRow. Numeric cells are
// parsed as float64 and empty cells are omitted, so they join as
// missing values.
func LoadAttributeRows(path string) ([]AttributeRow, error) {
	raw, err := loader.LoadAttributesCSV(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	rows := make([]AttributeRow, len(raw))
	for i, r := range raw {
		rows[i] = AttributeRow(r)
	}
	return rows, nil
}

// LoadGrid reads an ESRI ASCII grid (.asc) file into a Grid. The CRS
// is assumed WGS84; grid files carry no reference system.
func LoadGrid(path string) (Grid, error) {
	g, err := loader.LoadASCIIGrid(path)
	if err != nil {
		return Grid{}, &LoadError{Path: path, Err: err}
	}
	return Grid{
		CRS:      WGS84,
		Cols:     g.Cols,
		Rows:     g.Rows,
		CellSize: g.CellSize,
		Xll:      g.Xll,
		Yll:      g.Yll,
		Cells:    g.Cells,
	}, nil
}

// convertCollection maps the loader's neutral model onto the public
// one, validating geometry types on the way.
func convertCollection(c loader.Collection) (FeatureCollection, error) {
	fc := FeatureCollection{CRS: WGS84}
	if c.CRS != "" {
		fc.CRS = CRS{Code: c.CRS}
	}
	fc.Features = make([]Feature, 0, len(c.Features))
	for i, f := range c.Features {
		gt, err := geometryTypeOf(f.Geometry.Type)
		if err != nil {
			return FeatureCollection{}, fmt.Errorf("feature %d: %w", i, err)
		}
		props := f.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		fc.Features = append(fc.Features, Feature{
			Geometry:   Geometry{Type: gt, Rings: f.Geometry.Rings},
			Properties: props,
		})
	}
	return fc, nil
}

func geometryTypeOf(name string) (GeometryType, error) {
	switch name {
	case "Point":
		return GeometryPoint, nil
	case "LineString":
		return GeometryLineString, nil
	case "Polygon":
		return GeometryPolygon, nil
	case "MultiPolygon":
		return GeometryMultiPolygon, nil
	}
	return 0, fmt.Errorf("unsupported geometry type %q", name)
}
