// Package loader parses geometry and attribute sources into the neutral
// feature model the public API converts from: GeoJSON documents, WKT
// text, CSV point and attribute tables, and ESRI ASCII grids.
package loader

// Geometry is the parsed spatial representation, before conversion to the
// public model.
//
// Rings layout matches the public convention: Point and MultiPoint keep
// their positions in Rings[0]; LineString paths are one ring each;
// Polygon rings are outer-first; MultiPolygon rings are flattened with
// winding order separating outers from holes.
type Geometry struct {
	Type  string // "Point", "LineString", "Polygon", "MultiPolygon"
	Rings [][][]float64
}

// Feature is one parsed spatial entity with its source properties.
type Feature struct {
	Properties map[string]interface{}
	Geometry   Geometry
}

// Collection is an ordered set of parsed features.
type Collection struct {
	// CRS is the source-declared reference system code, empty when the
	// source declares none (callers assume WGS84).
	CRS      string
	Features []Feature
}

// orientRing returns the ring wound counter-clockwise (ccw true) or
// clockwise, reversing a copy when needed. Geographic coordinates, y up.
func orientRing(ring [][]float64, ccw bool) [][]float64 {
	if (ringArea(ring) > 0) == ccw {
		return ring
	}
	rev := make([][]float64, len(ring))
	for i, pt := range ring {
		rev[len(ring)-1-i] = pt
	}
	return rev
}

func ringArea(ring [][]float64) float64 {
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

// normalizePolygon enforces outer-ring counter-clockwise, holes
// clockwise.
func normalizePolygon(rings [][][]float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		out[i] = orientRing(ring, i == 0)
	}
	return out
}
