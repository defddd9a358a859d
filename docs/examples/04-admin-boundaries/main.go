package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/themalib/thema/pkg/thema"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Fetch first-level administrative boundaries for Kenya
	features, err := thema.FetchBoundaries(ctx, thema.BoundaryRequest{
		Region: "KEN",
		Level:  1,
	})
	if err != nil {
		var notFound *thema.NotFoundError
		if errors.As(err, &notFound) {
			log.Fatalf("no boundaries published for %s at level %d",
				notFound.Region, notFound.Level)
		}
		log.Fatal(err)
	}
	fmt.Printf("Fetched %d boundary features\n", len(features.Features))

	rows, err := thema.LoadAttributeRows("county_stats.csv")
	if err != nil {
		log.Fatal(err)
	}

	dataset, err := thema.Join(features, rows, "shapeName")
	if err != nil {
		log.Fatal(err)
	}

	spec := thema.DefaultStyleSpec()
	spec.Variable = "population"
	spec.Title = "Population by county"
	spec.Classing = thema.ClassQuantile
	spec.Classes = 6
	spec.Palette = "blues"

	style, err := thema.Resolve(dataset, spec)
	if err != nil {
		log.Fatal(err)
	}

	artifact, err := thema.Render(dataset, style, thema.ModeStatic)
	if err != nil {
		log.Fatal(err)
	}
	if err := artifact.WriteFile("counties.png"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote counties.png")
}
