package thema

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/themalib/thema/internal/boundaries"
)

// DefaultBoundaryServer is the boundary provider queried when a
// BoundaryRequest names no server.
const DefaultBoundaryServer = "https://www.geoboundaries.org/api/current/gbOpen"

// BoundaryRequest identifies an administrative boundary set to fetch.
//
// Region is the ISO 3166-1 alpha-3 country code; Level is the
// administrative depth (0 = country outline, 1 = first subdivision,
// and so on).
type BoundaryRequest struct {
	Region string
	Level  int

	// ServerURL overrides DefaultBoundaryServer.
	ServerURL string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	// Logger, when set, records fetch progress.
	Logger *zap.Logger
}

// FetchBoundaries downloads boundary features for a region and
// administrative level and converts them into a FeatureCollection
// ready for Join.
//
// A region/level combination the server does not have is reported as
// *NotFoundError; transport and decode failures as *LoadError.
//
//	fc, err := thema.FetchBoundaries(ctx, thema.BoundaryRequest{
//	    Region: "KEN",
//	    Level:  1,
//	})
func FetchBoundaries(ctx context.Context, req BoundaryRequest) (FeatureCollection, error) {
	server := req.ServerURL
	if server == "" {
		server = DefaultBoundaryServer
	}
	client := boundaries.NewClient(server)
	if req.HTTPClient != nil {
		client.HTTPClient = req.HTTPClient
	}

	if req.Logger != nil {
		req.Logger.Debug("fetching boundaries",
			zap.String("region", req.Region),
			zap.Int("level", req.Level),
			zap.String("server", server))
	}

	data, err := client.Fetch(ctx, req.Region, req.Level)
	if err != nil {
		if errors.Is(err, boundaries.ErrNotFound) {
			return FeatureCollection{}, &NotFoundError{Region: req.Region, Level: req.Level}
		}
		return FeatureCollection{}, &LoadError{
			Path: fmt.Sprintf("%s/%s/ADM%d.geojson", server, req.Region, req.Level),
			Err:  err,
		}
	}

	fc, err := ParseFeatures(fmt.Sprintf("%s ADM%d", req.Region, req.Level), data)
	if err != nil {
		return FeatureCollection{}, err
	}
	if req.Logger != nil {
		req.Logger.Debug("boundaries fetched",
			zap.String("region", req.Region),
			zap.Int("features", len(fc.Features)))
	}
	return fc, nil
}
