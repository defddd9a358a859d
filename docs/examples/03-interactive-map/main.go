package main

import (
	"fmt"
	"log"

	"github.com/themalib/thema/pkg/thema"
)

func main() {
	features, err := thema.LoadFeatures("regions.geojson")
	if err != nil {
		log.Fatal(err)
	}
	rows, err := thema.LoadAttributeRows("turnout.csv")
	if err != nil {
		log.Fatal(err)
	}

	dataset, err := thema.Join(features, rows, "region")
	if err != nil {
		log.Fatal(err)
	}

	spec := thema.DefaultStyleSpec()
	spec.Variable = "turnout"
	spec.Title = "Voter turnout"
	spec.FillOpacity = thema.Float(0.75)
	spec.Credits = "Electoral commission, 2026"

	style, err := thema.Resolve(dataset, spec)
	if err != nil {
		log.Fatal(err)
	}

	// Interactive output embeds the dataset as GeoJSON over a tile
	// basemap; each feature gets a hover popup with its joined values.
	opts := thema.DefaultRenderOptions()
	artifact, err := thema.RenderWithOptions(dataset, style, thema.ModeInteractive, opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("turnout.html"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote turnout.html (%d bytes), open it in a browser\n", len(artifact.Data))
}
