// Command thema renders thematic maps from geometry and attribute
// files on the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/themalib/thema/pkg/thema"
)

var (
	verbose bool
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "thema",
	Short: "Render thematic maps from geometry and attribute files",
	Long: `thema joins tabular attribute data onto geographic features and
renders the result as a static map image or an interactive HTML map.

Geometry sources: GeoJSON, WKT, CSV point tables, ESRI ASCII grids.
Attribute sources: CSV tables with a header row.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	renderFeatures  string
	renderRows      string
	renderGridPath  string
	renderKeyField  string
	renderVariable  string
	renderStyleFile string
	renderOut       string
	renderMode      string
	renderWidth     int
	renderHeight    int
	renderTitle     string
	renderPalette   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Join attributes onto features and render a map",
	Example: `  thema render --features counties.geojson --rows cases.csv \
      --key fips --var rate --out map.png

  thema render --grid elevation.asc --var elevation \
      --mode interactive --out map.html`,
	RunE: runRender,
}

var (
	fetchRegion string
	fetchLevel  int
	fetchServer string
	fetchOut    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download administrative boundaries from a boundary server",
	Example: `  thema fetch --region KEN --level 1 --out ken_adm1.geojson`,
	RunE:    runFetch,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	renderCmd.Flags().StringVar(&renderFeatures, "features", "", "Geometry file (.geojson/.json/.wkt/.csv)")
	renderCmd.Flags().StringVar(&renderRows, "rows", "", "Attribute table CSV")
	renderCmd.Flags().StringVar(&renderGridPath, "grid", "", "ESRI ASCII grid (.asc); replaces --features/--rows")
	renderCmd.Flags().StringVar(&renderKeyField, "key", "", "Join key field name")
	renderCmd.Flags().StringVar(&renderVariable, "var", "", "Variable to map (required)")
	renderCmd.Flags().StringVar(&renderStyleFile, "style", "", "YAML style file")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "map.png", "Output path (.png/.svg/.html)")
	renderCmd.Flags().StringVar(&renderMode, "mode", "", "Render mode: static or interactive (default from --out extension)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Image width in pixels")
	renderCmd.Flags().IntVar(&renderHeight, "height", 0, "Image height in pixels")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Map title")
	renderCmd.Flags().StringVar(&renderPalette, "palette", "", "Color ramp name (viridis, magma, blues, greens, reds)")
	_ = renderCmd.MarkFlagRequired("var")

	fetchCmd.Flags().StringVar(&fetchRegion, "region", "", "ISO 3166-1 alpha-3 country code (required)")
	fetchCmd.Flags().IntVar(&fetchLevel, "level", 0, "Administrative level (0 = country outline)")
	fetchCmd.Flags().StringVar(&fetchServer, "server", "", "Boundary server base URL")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Output GeoJSON path (required)")
	_ = fetchCmd.MarkFlagRequired("region")
	_ = fetchCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	spec := thema.DefaultStyleSpec()
	if renderStyleFile != "" {
		loaded, err := loadStyleFile(renderStyleFile)
		if err != nil {
			return err
		}
		spec = loaded
	}
	spec.Variable = renderVariable
	if renderTitle != "" {
		spec.Title = renderTitle
	}
	if renderPalette != "" {
		spec.Palette = renderPalette
	}

	var (
		fc       thema.FeatureCollection
		rows     []thema.AttributeRow
		keyField string
		err      error
	)
	switch {
	case renderGridPath != "":
		var grid thema.Grid
		grid, err = thema.LoadGrid(renderGridPath)
		if err != nil {
			return err
		}
		fc, rows = grid.ToThematic(renderVariable)
		keyField = thema.GridKeyField
	case renderFeatures != "" && renderRows != "":
		if renderKeyField == "" {
			return fmt.Errorf("--key is required with --features/--rows")
		}
		keyField = renderKeyField
		fc, err = thema.LoadFeatures(renderFeatures)
		if err != nil {
			return err
		}
		rows, err = thema.LoadAttributeRows(renderRows)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --grid or both --features and --rows are required")
	}

	ds, err := thema.JoinWithOptions(fc, rows, keyField, thema.JoinOptions{Logger: logger})
	if err != nil {
		return err
	}
	logger.Info("joined dataset",
		zap.Int("features", ds.FeatureCount()),
		zap.Strings("variables", ds.Variables))

	style, err := thema.Resolve(ds, spec)
	if err != nil {
		return err
	}

	opts := thema.DefaultRenderOptions()
	opts.Logger = logger
	if renderWidth > 0 {
		opts.Width = renderWidth
	}
	if renderHeight > 0 {
		opts.Height = renderHeight
	}

	mode, err := resolveMode(renderMode, renderOut, &opts)
	if err != nil {
		return err
	}

	artifact, err := thema.RenderWithOptions(ds, style, mode, opts)
	if err != nil {
		return err
	}
	if err := artifact.WriteFile(renderOut); err != nil {
		return err
	}
	logger.Info("map written",
		zap.String("path", renderOut),
		zap.String("kind", artifact.Kind),
		zap.Int("bytes", len(artifact.Data)))
	return nil
}

// resolveMode picks static or interactive rendering from --mode, falling
// back to the output extension.
func resolveMode(mode, out string, opts *thema.RenderOptions) (thema.Mode, error) {
	ext := strings.ToLower(out[strings.LastIndex(out, ".")+1:])
	if mode == "" {
		switch ext {
		case "html", "htm":
			mode = "interactive"
		default:
			mode = "static"
		}
	}
	switch mode {
	case "static":
		if ext == "svg" {
			opts.Format = thema.FormatSVG
		}
		return thema.ModeStatic, nil
	case "interactive":
		return thema.ModeInteractive, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want static or interactive)", mode)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fc, err := thema.FetchBoundaries(ctx, thema.BoundaryRequest{
		Region:    fetchRegion,
		Level:     fetchLevel,
		ServerURL: fetchServer,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	data, err := thema.MarshalGeoJSON(fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fetchOut, data, 0o644); err != nil {
		return err
	}
	logger.Info("boundaries written",
		zap.String("path", fetchOut),
		zap.Int("features", len(fc.Features)))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
