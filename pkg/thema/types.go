package thema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// CRS identifies the coordinate reference system of a feature collection.
//
// Code is the authority identifier (e.g., "EPSG:4326"). Proj optionally
// carries the proj-string for clients that need projection parameters.
// The pipeline treats the CRS as carried metadata: no datum transformation
// is performed, and collections with differing CRS codes cannot be combined
// on one map.
type CRS struct {
	Code string
	Proj string
}

// WGS84 is the default coordinate reference system (longitude/latitude in
// decimal degrees). All loaders assume WGS84 unless the source declares
// otherwise.
var WGS84 = CRS{
	Code: "EPSG:4326",
	Proj: "+proj=longlat +datum=WGS84 +no_defs",
}

// String returns the CRS authority code.
func (c CRS) String() string {
	if c.Code == "" {
		return WGS84.Code
	}
	return c.Code
}

// Equal reports whether two reference systems are interchangeable.
// Comparison is by authority code; an empty code means WGS84.
func (c CRS) Equal(o CRS) bool {
	return c.String() == o.String()
}

// Bounds is a geographic bounding box in the collection's CRS.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Intersects reports whether two bounding boxes overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinLon <= o.MaxLon && b.MaxLon >= o.MinLon &&
		b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat
}

// Extend returns the smallest bounds containing both b and o.
func (b Bounds) Extend(o Bounds) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, o.MinLon),
		MinLat: math.Min(b.MinLat, o.MinLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
	}
}

// Width returns the longitudinal span of the bounds.
func (b Bounds) Width() float64 { return b.MaxLon - b.MinLon }

// Height returns the latitudinal span of the bounds.
func (b Bounds) Height() float64 { return b.MaxLat - b.MinLat }

// Center returns the midpoint of the bounds as (lon, lat).
func (b Bounds) Center() (float64, float64) {
	return (b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2
}

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryPoint represents a single point location.
	GeometryPoint GeometryType = iota

	// GeometryLineString represents a line composed of connected points.
	GeometryLineString

	// GeometryPolygon represents a closed polygon area, possibly with holes.
	GeometryPolygon

	// GeometryMultiPolygon represents several disjoint polygon areas
	// belonging to one feature (e.g., a country with islands).
	GeometryMultiPolygon
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryPoint:
		return "Point"
	case GeometryLineString:
		return "LineString"
	case GeometryPolygon:
		return "Polygon"
	case GeometryMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Geometry is the spatial representation of a feature.
//
// Coordinates follow GeoJSON convention: [longitude, latitude] pairs in
// the collection's CRS.
//
// Rings holds the coordinate arrays:
//   - Point: Rings[0][0] is the position.
//   - LineString: Rings[0] is the vertex path.
//   - Polygon: Rings[0] is the outer boundary, following rings are holes.
//   - MultiPolygon: all rings of all member polygons; winding order
//     separates outer boundaries (counter-clockwise) from holes.
type Geometry struct {
	Type  GeometryType
	Rings [][][]float64
}

// NewPoint returns a point geometry at (lon, lat).
func NewPoint(lon, lat float64) Geometry {
	return Geometry{
		Type:  GeometryPoint,
		Rings: [][][]float64{{{lon, lat}}},
	}
}

// NewLineString returns a line geometry through the given vertices.
func NewLineString(coords [][]float64) Geometry {
	return Geometry{
		Type:  GeometryLineString,
		Rings: [][][]float64{coords},
	}
}

// NewPolygon returns a polygon geometry. The first ring is the outer
// boundary; any following rings are holes.
func NewPolygon(rings [][][]float64) Geometry {
	return Geometry{
		Type:  GeometryPolygon,
		Rings: rings,
	}
}

// Bounds returns the bounding box of the geometry.
func (g Geometry) Bounds() Bounds {
	b := Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	for _, ring := range g.Rings {
		for _, pt := range ring {
			if len(pt) < 2 {
				continue
			}
			if pt[0] < b.MinLon {
				b.MinLon = pt[0]
			}
			if pt[1] < b.MinLat {
				b.MinLat = pt[1]
			}
			if pt[0] > b.MaxLon {
				b.MaxLon = pt[0]
			}
			if pt[1] > b.MaxLat {
				b.MaxLat = pt[1]
			}
		}
	}
	return b
}

// Empty reports whether the geometry carries no coordinates.
func (g Geometry) Empty() bool {
	for _, ring := range g.Rings {
		if len(ring) > 0 {
			return false
		}
	}
	return true
}

// Feature is one spatial entity: a geometry plus the properties carried by
// its source (region identifiers, names, pre-existing measurements).
//
// Features are immutable once loaded; the join never mutates a feature, it
// pairs it with attribute values in a ThematicDataset.
type Feature struct {
	Geometry   Geometry
	Properties map[string]interface{}
}

// Bounds returns the bounding box of the feature's geometry.
func (f Feature) Bounds() Bounds {
	return f.Geometry.Bounds()
}

// FeatureCollection is an ordered sequence of features sharing one
// coordinate reference system.
//
// A valid map requires a non-empty collection; rendering an empty one
// fails with EmptyGeometryError.
type FeatureCollection struct {
	CRS      CRS
	Features []Feature
}

// Bounds returns the bounding box covering every feature in the collection.
func (fc FeatureCollection) Bounds() Bounds {
	b := Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	for _, f := range fc.Features {
		b = b.Extend(f.Bounds())
	}
	return b
}

// AttributeRow maps variable names to scalar values. One of the columns is
// the join key identifying the feature the row describes.
type AttributeRow map[string]interface{}

// ThematicEntry pairs one feature with the attribute values joined onto it.
// Values is nil for features with no matching attribute row.
type ThematicEntry struct {
	Feature Feature
	Key     string
	Values  map[string]interface{}
}

// HasData reports whether any attribute row matched this entry's feature.
func (e ThematicEntry) HasData() bool {
	return e.Values != nil
}

// Value extracts a numeric attribute value by variable name.
// The second result is false when the entry has no data, the variable is
// absent, or the value is not numeric.
func (e ThematicEntry) Value(name string) (float64, bool) {
	if e.Values == nil {
		return 0, false
	}
	v, ok := e.Values[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// ThematicDataset is the result of joining attribute rows onto a feature
// collection: one entry per input feature, in input order.
//
// Datasets are request-scoped and derived; create one per rendering
// request and discard it afterwards.
type ThematicDataset struct {
	CRS      CRS
	KeyField string

	// Variables is the sorted attribute schema: every variable name seen
	// in the joined rows, excluding the key field.
	Variables []string

	Entries []ThematicEntry
}

// FeatureCount returns the number of entries in the dataset.
func (d ThematicDataset) FeatureCount() int {
	return len(d.Entries)
}

// Bounds returns the bounding box covering every entry's geometry.
func (d ThematicDataset) Bounds() Bounds {
	b := Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
	for _, e := range d.Entries {
		b = b.Extend(e.Feature.Bounds())
	}
	return b
}

// HasVariable reports whether the dataset's attribute schema contains the
// named variable.
func (d ThematicDataset) HasVariable(name string) bool {
	i := sort.SearchStrings(d.Variables, name)
	return i < len(d.Variables) && d.Variables[i] == name
}

// Domain returns the (min, max) range of a numeric variable across all
// entries that have data. ok is false when no entry yields a numeric value.
func (d ThematicDataset) Domain(name string) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, e := range d.Entries {
		v, has := e.Value(name)
		if !has {
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		ok = true
	}
	return min, max, ok
}

// toFloat converts the scalar types loaders and JSON decoding produce.
func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// keyString normalizes a join key value to its string form so numeric and
// string-typed keys compare consistently.
func keyString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; render integral keys without
		// a fractional part.
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%v", x)
	}
}
