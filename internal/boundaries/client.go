// Package boundaries fetches administrative boundary geometry from a
// GeoJSON boundary server.
package boundaries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when the server has no boundary file for the
// requested region and level.
var ErrNotFound = errors.New("boundary not found")

const maxBodySize = 256 << 20

// Client downloads boundary GeoJSON documents.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a Client for the given server with a default
// request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads the boundary document for an ISO region code at the
// given administrative level. The document path on the server is
// /{REGION}/ADM{level}.geojson.
func (c *Client) Fetch(ctx context.Context, region string, level int) ([]byte, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return nil, fmt.Errorf("empty region code")
	}
	if level < 0 {
		return nil, fmt.Errorf("negative admin level %d", level)
	}

	url := fmt.Sprintf("%s/%s/ADM%d.geojson", strings.TrimRight(c.BaseURL, "/"), region, level)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty response body", url)
	}
	return data, nil
}
