package boundaries

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientFetch(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.Fetch(context.Background(), "ken", 2)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("Expected response body")
	}

	// Region codes are uppercased in the URL
	if gotPath != "/KEN/ADM2.geojson" {
		t.Errorf("Expected path /KEN/ADM2.geojson, got %s", gotPath)
	}
	if !strings.Contains(gotAccept, "geo+json") {
		t.Errorf("Expected geo+json accept header, got %q", gotAccept)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Fetch(context.Background(), "ZZZ", 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestClientFetchValidation(t *testing.T) {
	c := NewClient("http://example.invalid")
	if _, err := c.Fetch(context.Background(), "", 0); err == nil {
		t.Errorf("Expected error for empty region")
	}
	if _, err := c.Fetch(context.Background(), "KEN", -1); err == nil {
		t.Errorf("Expected error for negative level")
	}
}

func TestClientFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Fetch(context.Background(), "KEN", 0); err == nil {
		t.Errorf("Expected error for empty body")
	}
}
