package main

import (
	"fmt"
	"log"

	"github.com/themalib/thema/pkg/thema"
)

func main() {
	// An ESRI ASCII grid becomes one square feature per cell
	grid, err := thema.LoadGrid("elevation.asc")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Grid: %dx%d cells, %.4f degrees per cell\n",
		grid.Cols, grid.Rows, grid.CellSize)

	features, rows := grid.ToThematic("elevation")

	dataset, err := thema.Join(features, rows, thema.GridKeyField)
	if err != nil {
		log.Fatal(err)
	}

	spec := thema.DefaultStyleSpec()
	spec.Variable = "elevation"
	spec.Title = "Elevation (m)"
	spec.Palette = "magma"
	spec.BorderWidth = thema.Float(0) // no cell outlines
	spec.ScaleBar = true

	style, err := thema.Resolve(dataset, spec)
	if err != nil {
		log.Fatal(err)
	}

	artifact, err := thema.Render(dataset, style, thema.ModeStatic)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("elevation.png"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote elevation.png")
}
