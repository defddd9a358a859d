package thema

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const boundaryFixture = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"shapeName": "Coastal", "shapeISO": "XX-01"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"shapeName": "Inland", "shapeISO": "XX-02"},
			"geometry": {
				"type": "MultiPolygon",
				"coordinates": [
					[[[3,0],[5,0],[5,2],[3,2],[3,0]]],
					[[[6,0],[7,0],[7,1],[6,1],[6,0]]]
				]
			}
		}
	]
}`

func TestFetchBoundaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/XKX/ADM1.geojson" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(boundaryFixture))
	}))
	defer srv.Close()

	fc, err := FetchBoundaries(context.Background(), BoundaryRequest{
		Region:    "XKX",
		Level:     1,
		ServerURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("FetchBoundaries failed: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["shapeName"] != "Coastal" {
		t.Errorf("Expected shapeName Coastal, got %v", fc.Features[0].Properties["shapeName"])
	}
	if fc.Features[1].Geometry.Type != GeometryMultiPolygon {
		t.Errorf("Expected multipolygon, got %v", fc.Features[1].Geometry.Type)
	}

	// The fetched collection joins and renders
	rows := []AttributeRow{
		{"shapeName": "Coastal", "pop": 120.0},
		{"shapeName": "Inland", "pop": 45.0},
	}
	ds, err := Join(fc, rows, "shapeName")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	spec := DefaultStyleSpec()
	spec.Variable = "pop"
	style, err := Resolve(ds, spec)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, err := Render(ds, style, ModeStatic); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}

func TestFetchBoundariesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := FetchBoundaries(context.Background(), BoundaryRequest{
		Region:    "ZZZ",
		Level:     3,
		ServerURL: srv.URL,
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if notFound.Region != "ZZZ" || notFound.Level != 3 {
		t.Errorf("Expected ZZZ/3 in error, got %s/%d", notFound.Region, notFound.Level)
	}
}

func TestFetchBoundariesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := FetchBoundaries(context.Background(), BoundaryRequest{
		Region:    "XKX",
		Level:     1,
		ServerURL: srv.URL,
	})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
}

func TestFetchBoundariesContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FetchBoundaries(ctx, BoundaryRequest{
		Region:    "XKX",
		Level:     0,
		ServerURL: srv.URL,
	})
	if err == nil {
		t.Fatalf("Expected error for canceled context")
	}
}
