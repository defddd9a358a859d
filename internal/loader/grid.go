package loader

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// GridData holds a regular raster read from an ESRI ASCII grid file.
// Cells are row-major with the northernmost row first; missing cells
// are NaN.
type GridData struct {
	Cols     int
	Rows     int
	Xll      float64
	Yll      float64
	CellSize float64
	Cells    []float64
}

// LoadASCIIGrid reads an ESRI ASCII grid (.asc) file: a header of
// ncols/nrows/xllcorner/yllcorner/cellsize and optional nodata_value
// lines, followed by whitespace-separated cell values.
func LoadASCIIGrid(path string) (GridData, error) {
	f, err := os.Open(path)
	if err != nil {
		return GridData{}, err
	}
	defer f.Close()

	var g GridData
	nodata := -9999.0
	seen := map[string]bool{}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	// Header lines are "key value"; the first line that does not start
	// with a known key begins the cell values.
	var pending []string
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])
		if len(fields) == 2 && isGridHeaderKey(key) {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return GridData{}, fmt.Errorf("header %s: %w", key, err)
			}
			seen[key] = true
			switch key {
			case "ncols":
				g.Cols = int(v)
			case "nrows":
				g.Rows = int(v)
			case "xllcorner":
				g.Xll = v
			case "yllcorner":
				g.Yll = v
			case "cellsize":
				g.CellSize = v
			case "nodata_value":
				nodata = v
			}
			continue
		}
		pending = fields
		break
	}

	for _, key := range []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"} {
		if !seen[key] {
			return GridData{}, fmt.Errorf("missing header field %s", key)
		}
	}
	if g.Cols <= 0 || g.Rows <= 0 || g.CellSize <= 0 {
		return GridData{}, fmt.Errorf("invalid grid dimensions %dx%d cellsize %g", g.Cols, g.Rows, g.CellSize)
	}

	want := g.Cols * g.Rows
	g.Cells = make([]float64, 0, want)
	appendCells := func(fields []string) error {
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("cell %d: %w", len(g.Cells)+1, err)
			}
			if v == nodata {
				v = math.NaN()
			}
			g.Cells = append(g.Cells, v)
		}
		return nil
	}
	if err := appendCells(pending); err != nil {
		return GridData{}, err
	}
	for scanner.Scan() {
		if err := appendCells(strings.Fields(scanner.Text())); err != nil {
			return GridData{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return GridData{}, err
	}
	if len(g.Cells) != want {
		return GridData{}, fmt.Errorf("expected %d cells, found %d", want, len(g.Cells))
	}
	return g, nil
}

func isGridHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "nodata_value":
		return true
	}
	return false
}
