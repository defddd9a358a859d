package main

import (
	"fmt"
	"log"

	"github.com/themalib/thema/pkg/thema"
)

func main() {
	features, err := thema.LoadFeatures("districts.geojson")
	if err != nil {
		log.Fatal(err)
	}
	rows, err := thema.LoadAttributeRows("prevalence.csv")
	if err != nil {
		log.Fatal(err)
	}

	dataset, err := thema.Join(features, rows, "district_id")
	if err != nil {
		log.Fatal(err)
	}

	// Fixed class breaks: three classes, low / medium / high
	spec := thema.DefaultStyleSpec()
	spec.Variable = "prevalence"
	spec.Title = "Prevalence by district"
	spec.Palette = "reds"
	spec.Breaks = []float64{0, 5, 15, 40}
	spec.BorderColor = "#FFFFFF"
	spec.BorderWidth = thema.Float(0.8)
	spec.ScaleBar = true
	spec.Compass = true
	spec.Credits = "Data: Ministry of Health"

	style, err := thema.Resolve(dataset, spec)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Classes: %d\n", len(style.ClassColors))
	fmt.Printf("Domain: [%.1f, %.1f]\n", style.DomainMin, style.DomainMax)

	opts := thema.DefaultRenderOptions()
	opts.Width = 1200
	opts.Height = 900

	artifact, err := thema.RenderWithOptions(dataset, style, thema.ModeStatic, opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("choropleth.png"); err != nil {
		log.Fatal(err)
	}

	// The same dataset and style render to SVG as well
	opts.Format = thema.FormatSVG
	artifact, err = thema.RenderWithOptions(dataset, style, thema.ModeStatic, opts)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("choropleth.svg"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote choropleth.png and choropleth.svg")
}
