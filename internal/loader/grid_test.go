package loader

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeTempGrid(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.asc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write grid: %v", err)
	}
	return path
}

func TestLoadASCIIGrid(t *testing.T) {
	path := writeTempGrid(t, `ncols 4
nrows 2
xllcorner 100.0
yllcorner -25.0
cellsize 0.25
NODATA_value -9999
1 2 3 4
5 -9999 7 8
`)

	g, err := LoadASCIIGrid(path)
	if err != nil {
		t.Fatalf("LoadASCIIGrid failed: %v", err)
	}
	if g.Cols != 4 || g.Rows != 2 {
		t.Fatalf("Expected 4x2 grid, got %dx%d", g.Cols, g.Rows)
	}
	if g.Xll != 100.0 || g.Yll != -25.0 || g.CellSize != 0.25 {
		t.Errorf("Header mismatch: xll=%g yll=%g cellsize=%g", g.Xll, g.Yll, g.CellSize)
	}
	if len(g.Cells) != 8 {
		t.Fatalf("Expected 8 cells, got %d", len(g.Cells))
	}
	if g.Cells[0] != 1 || g.Cells[7] != 8 {
		t.Errorf("Cell order wrong: first=%g last=%g", g.Cells[0], g.Cells[7])
	}
	if !math.IsNaN(g.Cells[5]) {
		t.Errorf("Expected nodata cell as NaN, got %g", g.Cells[5])
	}
}

func TestLoadASCIIGridWrappedValues(t *testing.T) {
	// Cell values may span lines arbitrarily
	path := writeTempGrid(t, `ncols 3
nrows 2
xllcorner 0
yllcorner 0
cellsize 1
1 2
3 4 5
6
`)
	g, err := LoadASCIIGrid(path)
	if err != nil {
		t.Fatalf("LoadASCIIGrid failed: %v", err)
	}
	if len(g.Cells) != 6 || g.Cells[5] != 6 {
		t.Errorf("Expected 6 cells ending in 6, got %v", g.Cells)
	}
}

func TestLoadASCIIGridErrors(t *testing.T) {
	cases := map[string]string{
		"missing header": "ncols 3\nnrows 2\n1 2 3 4 5 6\n",
		"short data":     "ncols 3\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n",
		"bad cell":       "ncols 2\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 x\n",
		"zero dims":      "ncols 0\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n",
	}
	for name, content := range cases {
		if _, err := LoadASCIIGrid(writeTempGrid(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
