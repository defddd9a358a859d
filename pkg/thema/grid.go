package thema

import (
	"fmt"
	"math"
)

// GridKeyField is the join key field used by grid-derived datasets.
const GridKeyField = "cell"

// Grid is a gridded surface: a matrix of sampled values (elevation,
// temperature, prevalence) over a regular geographic lattice.
//
// Cells are stored row-major with the northernmost row first. NaN marks
// cells without data.
type Grid struct {
	CRS      CRS
	Cols     int
	Rows     int
	CellSize float64

	// Xll and Yll locate the lower-left corner of the lower-left cell.
	Xll float64
	Yll float64

	Cells []float64
}

// Bounds returns the geographic extent of the grid.
func (g Grid) Bounds() Bounds {
	return Bounds{
		MinLon: g.Xll,
		MinLat: g.Yll,
		MaxLon: g.Xll + float64(g.Cols)*g.CellSize,
		MaxLat: g.Yll + float64(g.Rows)*g.CellSize,
	}
}

// Value returns the sampled value at (col, row), with row 0 the
// northernmost. ok is false for out-of-range indices and no-data cells.
func (g Grid) Value(col, row int) (float64, bool) {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return 0, false
	}
	v := g.Cells[row*g.Cols+col]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ToThematic converts the grid into join inputs: one square polygon
// feature per cell, keyed by cell position, and one attribute row per
// cell that has data. No-data cells keep their feature but contribute no
// row, so they fall back to the missing-value fill after the join.
//
// The variable argument names the attribute column the rows carry.
func (g Grid) ToThematic(variable string) (FeatureCollection, []AttributeRow) {
	fc := FeatureCollection{CRS: g.CRS}
	rows := make([]AttributeRow, 0, len(g.Cells))

	for row := 0; row < g.Rows; row++ {
		// Row 0 is the northernmost strip of cells.
		yTop := g.Yll + float64(g.Rows-row)*g.CellSize
		yBot := yTop - g.CellSize
		for col := 0; col < g.Cols; col++ {
			xLeft := g.Xll + float64(col)*g.CellSize
			xRight := xLeft + g.CellSize
			key := fmt.Sprintf("r%dc%d", row, col)

			// Counter-clockwise outer ring.
			ring := [][]float64{
				{xLeft, yBot},
				{xRight, yBot},
				{xRight, yTop},
				{xLeft, yTop},
				{xLeft, yBot},
			}
			fc.Features = append(fc.Features, Feature{
				Geometry:   NewPolygon([][][]float64{ring}),
				Properties: map[string]interface{}{GridKeyField: key},
			})

			if v, ok := g.Value(col, row); ok {
				rows = append(rows, AttributeRow{GridKeyField: key, variable: v})
			}
		}
	}
	return fc, rows
}
