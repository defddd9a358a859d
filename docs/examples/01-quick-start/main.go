package main

import (
	"fmt"
	"log"

	"github.com/themalib/thema/pkg/thema"
)

func main() {
	// Load features and attribute rows
	features, err := thema.LoadFeatures("counties.geojson")
	if err != nil {
		log.Fatal(err)
	}
	rows, err := thema.LoadAttributeRows("cases.csv")
	if err != nil {
		log.Fatal(err)
	}

	// Join rows onto features by the shared key field
	dataset, err := thema.Join(features, rows, "fips")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Features: %d\n", dataset.FeatureCount())
	fmt.Printf("Variables: %v\n", dataset.Variables)

	// Resolve a style for one variable
	spec := thema.DefaultStyleSpec()
	spec.Variable = "rate"
	spec.Title = "Case rate per 100k"
	style, err := thema.Resolve(dataset, spec)
	if err != nil {
		log.Fatal(err)
	}

	// Render a static map
	artifact, err := thema.Render(dataset, style, thema.ModeStatic)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("map.png"); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", "map.png", len(artifact.Data))
}
