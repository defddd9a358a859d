package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadWKT reads a text file with one WKT geometry per non-empty line.
// Each line becomes a feature with an "id" property holding its 1-based
// line position.
func LoadWKT(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Collection{}, err
	}
	defer f.Close()

	var c Collection
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		g, err := ParseWKT(text)
		if err != nil {
			return Collection{}, fmt.Errorf("line %d: %w", line, err)
		}
		c.Features = append(c.Features, Feature{
			Properties: map[string]interface{}{"id": len(c.Features) + 1},
			Geometry:   g,
		})
	}
	if err := scanner.Err(); err != nil {
		return Collection{}, err
	}
	if len(c.Features) == 0 {
		return Collection{}, fmt.Errorf("no geometries found")
	}
	return c, nil
}

// ParseWKT parses one well-known-text geometry.
//
// Supported: POINT, MULTIPOINT, LINESTRING, POLYGON, MULTIPOLYGON.
func ParseWKT(s string) (Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Geometry{}, fmt.Errorf("empty wkt")
	}

	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return Geometry{}, fmt.Errorf("wkt: missing coordinate block")
	}
	keyword := strings.ToUpper(strings.TrimSpace(s[:open]))
	body := s[open+1 : len(s)-1]

	switch keyword {
	case "POINT":
		pt, err := parseTuple(body)
		if err != nil {
			return Geometry{}, fmt.Errorf("wkt point: %w", err)
		}
		return Geometry{Type: "Point", Rings: [][][]float64{{pt}}}, nil

	case "MULTIPOINT":
		pts, err := parseTupleList(stripInnerParens(body))
		if err != nil {
			return Geometry{}, fmt.Errorf("wkt multipoint: %w", err)
		}
		return Geometry{Type: "Point", Rings: [][][]float64{pts}}, nil

	case "LINESTRING":
		pts, err := parseTupleList(body)
		if err != nil {
			return Geometry{}, fmt.Errorf("wkt linestring: %w", err)
		}
		if len(pts) < 2 {
			return Geometry{}, fmt.Errorf("wkt linestring: need at least 2 points")
		}
		return Geometry{Type: "LineString", Rings: [][][]float64{pts}}, nil

	case "POLYGON":
		rings, err := parseRingList(body)
		if err != nil {
			return Geometry{}, fmt.Errorf("wkt polygon: %w", err)
		}
		return Geometry{Type: "Polygon", Rings: normalizePolygon(rings)}, nil

	case "MULTIPOLYGON":
		var rings [][][]float64
		for i, polyBody := range splitTopLevel(body) {
			polyBody = strings.TrimSpace(polyBody)
			if !strings.HasPrefix(polyBody, "(") || !strings.HasSuffix(polyBody, ")") {
				return Geometry{}, fmt.Errorf("wkt multipolygon: polygon %d not parenthesized", i+1)
			}
			poly, err := parseRingList(polyBody[1 : len(polyBody)-1])
			if err != nil {
				return Geometry{}, fmt.Errorf("wkt multipolygon: polygon %d: %w", i+1, err)
			}
			rings = append(rings, normalizePolygon(poly)...)
		}
		if len(rings) == 0 {
			return Geometry{}, fmt.Errorf("wkt multipolygon: empty")
		}
		return Geometry{Type: "MultiPolygon", Rings: rings}, nil

	default:
		return Geometry{}, fmt.Errorf("unsupported wkt type %q", keyword)
	}
}

// parseRingList parses "(x y, ...), (x y, ...)" into rings.
func parseRingList(body string) ([][][]float64, error) {
	var rings [][][]float64
	for i, ringBody := range splitTopLevel(body) {
		ringBody = strings.TrimSpace(ringBody)
		if !strings.HasPrefix(ringBody, "(") || !strings.HasSuffix(ringBody, ")") {
			return nil, fmt.Errorf("ring %d not parenthesized", i+1)
		}
		pts, err := parseTupleList(ringBody[1 : len(ringBody)-1])
		if err != nil {
			return nil, fmt.Errorf("ring %d: %w", i+1, err)
		}
		if len(pts) < 4 {
			return nil, fmt.Errorf("ring %d: need at least 4 points", i+1)
		}
		rings = append(rings, pts)
	}
	if len(rings) == 0 {
		return nil, fmt.Errorf("no rings")
	}
	return rings, nil
}

// splitTopLevel splits a comma-separated list, ignoring commas nested
// inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, ch := range s {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// stripInnerParens normalizes "(1 2), (3 4)" multipoint syntax to the
// unparenthesized form.
func stripInnerParens(s string) string {
	s = strings.ReplaceAll(s, "(", "")
	return strings.ReplaceAll(s, ")", "")
}

func parseTupleList(body string) ([][]float64, error) {
	var pts [][]float64
	for _, tup := range strings.Split(body, ",") {
		tup = strings.TrimSpace(tup)
		if tup == "" {
			continue
		}
		pt, err := parseTuple(tup)
		if err != nil {
			return nil, err
		}
		pts = append(pts, pt)
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no coordinates")
	}
	return pts, nil
}

func parseTuple(tup string) ([]float64, error) {
	fields := strings.Fields(strings.TrimSpace(tup))
	if len(fields) < 2 {
		return nil, fmt.Errorf("coordinate %q: need x and y", tup)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", tup, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, fmt.Errorf("coordinate %q: %w", tup, err)
	}
	return []float64{x, y}, nil
}
