package thema

import (
	"go.uber.org/zap"
)

// Classing method names accepted by StyleSpec.Classing.
const (
	// ClassContinuous interpolates colors over the full value domain.
	ClassContinuous = "continuous"
	// ClassFixed uses the break points supplied in StyleSpec.Breaks.
	ClassFixed = "fixed"
	// ClassQuantile computes breaks so each class holds an equal share of
	// the observed values.
	ClassQuantile = "quantile"
	// ClassEqual computes breaks of equal width over the value domain.
	ClassEqual = "equal"
)

// StyleSpec configures how a thematic dataset is turned into a styled map.
//
// Only Variable is required. Every other field has a documented default
// applied by Resolve; a zero StyleSpec with a variable name renders a
// continuous-ramp map with a legend and no further annotations.
type StyleSpec struct {
	// Variable names the attribute to render. It must exist in the
	// dataset's attribute schema or Resolve fails with
	// UnknownVariableError.
	Variable string

	// Title is the caption drawn above the map. Empty means no title.
	Title string

	// Palette is a named color ramp: "viridis" (default), "magma",
	// "blues", "greens", or "reds".
	Palette string

	// Breaks is an ordered numeric sequence of class boundaries.
	// len(Breaks)-1 classes are produced. Leave nil for continuous
	// classing or for computed breaks (see Classing).
	Breaks []float64

	// Classing selects the classification method. Defaults to
	// ClassContinuous when Breaks is nil and ClassFixed otherwise.
	Classing string

	// Classes is the class count for quantile and equal-interval
	// classing. Default 5.
	Classes int

	// FillOpacity is the feature fill opacity in [0, 1]. Nil means 1.
	// Use Float to set it; an explicit 0 is honored.
	FillOpacity *float64

	// MissingColor is the hex fill color for features with no data.
	// Default "#B0B0B0".
	MissingColor string

	// MissingOpacity is the opacity for features with no data.
	// Default 0 (transparent), so missing regions show the background.
	// Set explicitly to paint them with MissingColor.
	MissingOpacity float64

	// BorderColor is the hex stroke color for feature outlines.
	// Default "#4A4A4A".
	BorderColor string

	// BorderWidth is the outline width in pixels. Nil means 1; an
	// explicit 0 suppresses outlines.
	BorderWidth *float64

	// PointRadius is the radius in pixels for point features.
	// Nil means 4.
	PointRadius *float64

	// LineWidth is the stroke width in pixels for line features.
	// Nil means 2.
	LineWidth *float64

	// LegendPosition places the legend: "bottomright" (default),
	// "bottomleft", "topright", or "topleft". Set HideLegend to omit
	// the legend entirely.
	LegendPosition string

	// HideLegend omits the legend.
	HideLegend bool

	// ScaleBar draws a scale bar in the lower left corner.
	ScaleBar bool

	// ScaleBarBreaks lists the tick distances of the scale bar in
	// kilometers. Nil means breaks are chosen automatically.
	ScaleBarBreaks []float64

	// Compass draws a north arrow in the upper right corner.
	Compass bool

	// Credits is a small attribution line drawn in the lower right
	// corner and embedded in interactive documents.
	Credits string
}

// DefaultStyleSpec returns a style specification with defaults for every
// optional field. Variable is left empty and must be set by the caller.
func DefaultStyleSpec() StyleSpec {
	return StyleSpec{
		Palette:        "viridis",
		Classing:       ClassContinuous,
		Classes:        5,
		FillOpacity:    Float(1),
		MissingColor:   "#B0B0B0",
		MissingOpacity: 0,
		BorderColor:    "#4A4A4A",
		BorderWidth:    Float(1),
		PointRadius:    Float(4),
		LineWidth:      Float(2),
		LegendPosition: "bottomright",
	}
}

// Float returns a pointer to v, for the optional numeric StyleSpec
// fields where zero is a meaningful value.
func Float(v float64) *float64 {
	return &v
}

// JoinOptions configures join behavior.
type JoinOptions struct {
	// Logger receives a warning listing attribute rows whose keys match
	// no feature (such rows are dropped). Nil disables logging.
	Logger *zap.Logger
}

// DefaultJoinOptions returns default join options (no logging).
func DefaultJoinOptions() JoinOptions {
	return JoinOptions{}
}

// Static artifact formats.
const (
	// FormatPNG produces a fixed-resolution raster image.
	FormatPNG = "png"
	// FormatSVG produces a vector image.
	FormatSVG = "svg"
)

// RenderOptions configures the rendering surface.
type RenderOptions struct {
	// Width and Height are the static output size in pixels.
	// Defaults: 900 by 660.
	Width  int
	Height int

	// Format selects the static artifact format, FormatPNG (default) or
	// FormatSVG. Ignored in interactive mode.
	Format string

	// Background is the hex background color of static output.
	// Default "#FFFFFF".
	Background string

	// Extent restricts the map to a bounding box. Features entirely
	// outside the extent are clipped away before painting. Nil means
	// the full dataset bounds plus a small margin.
	Extent *Bounds

	// TileURL is the slippy tile URL template for the interactive
	// basemap. Default is the OpenStreetMap standard layer.
	TileURL string

	// TileAttribution is the attribution line required by the tile
	// provider.
	TileAttribution string

	// Logger receives per-render debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultRenderOptions returns default render options.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Width:           900,
		Height:          660,
		Format:          FormatPNG,
		Background:      "#FFFFFF",
		TileURL:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		TileAttribution: "&copy; OpenStreetMap contributors",
	}
}
