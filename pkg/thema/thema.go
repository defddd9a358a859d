// Package thema renders thematic maps: it joins an attribute table onto a
// geometry collection, resolves a visual encoding for one variable, and
// paints the result as a static image or an interactive document.
//
// The pipeline is three stateless stages composed strictly in sequence:
//
//	dataset, err := thema.Join(features, rows, "region")
//	style, err := thema.Resolve(dataset, thema.StyleSpec{Variable: "prevalence"})
//	artifact, err := thema.Render(dataset, style, thema.ModeStatic)
//
// Each rendering request runs to completion on the calling goroutine and
// either returns exactly one MapArtifact or fails with an error naming the
// stage and the offending input. Nothing is cached or retried, and no
// partial artifact is ever produced.
package thema

// Mode selects the rendering target.
type Mode int

const (
	// ModeStatic produces a fixed-resolution image (PNG or SVG).
	ModeStatic Mode = iota

	// ModeInteractive produces an HTML document that defers feature
	// styling to a client-side renderer over an external tile basemap.
	ModeInteractive
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Renderer turns a thematic dataset and a resolved style into a map
// artifact.
//
// Create one with NewRenderer. A Renderer holds no state between calls;
// the interface exists so callers can substitute a recording
// implementation in tests.
type Renderer interface {
	// Render produces one artifact with default render options.
	Render(dataset ThematicDataset, style ResolvedStyle, mode Mode) (MapArtifact, error)

	// RenderWithOptions produces one artifact with explicit options.
	RenderWithOptions(dataset ThematicDataset, style ResolvedStyle, mode Mode, opts RenderOptions) (MapArtifact, error)
}

// NewRenderer creates a renderer with default settings.
func NewRenderer() Renderer {
	return &renderer{}
}

type renderer struct{}

func (r *renderer) Render(dataset ThematicDataset, style ResolvedStyle, mode Mode) (MapArtifact, error) {
	return r.RenderWithOptions(dataset, style, mode, DefaultRenderOptions())
}

func (r *renderer) RenderWithOptions(dataset ThematicDataset, style ResolvedStyle, mode Mode, opts RenderOptions) (MapArtifact, error) {
	if len(dataset.Entries) == 0 {
		return MapArtifact{}, &EmptyGeometryError{}
	}
	opts = withRenderDefaults(opts)

	switch mode {
	case ModeStatic:
		if opts.Format == FormatSVG {
			return renderSVG(dataset, style, opts)
		}
		return renderStatic(dataset, style, opts)
	case ModeInteractive:
		return renderInteractive(dataset, style, opts)
	default:
		return MapArtifact{}, &RenderBackendError{Mode: mode.String(), Reason: "unknown render mode"}
	}
}

// Render runs a rendering request with default options on a throwaway
// renderer. Equivalent to NewRenderer().Render.
func Render(dataset ThematicDataset, style ResolvedStyle, mode Mode) (MapArtifact, error) {
	return NewRenderer().Render(dataset, style, mode)
}

// RenderWithOptions runs a rendering request with explicit options on a
// throwaway renderer.
func RenderWithOptions(dataset ThematicDataset, style ResolvedStyle, mode Mode, opts RenderOptions) (MapArtifact, error) {
	return NewRenderer().RenderWithOptions(dataset, style, mode, opts)
}

func withRenderDefaults(opts RenderOptions) RenderOptions {
	def := DefaultRenderOptions()
	if opts.Width == 0 {
		opts.Width = def.Width
	}
	if opts.Height == 0 {
		opts.Height = def.Height
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	if opts.Background == "" {
		opts.Background = def.Background
	}
	if opts.TileURL == "" {
		opts.TileURL = def.TileURL
	}
	if opts.TileAttribution == "" {
		opts.TileAttribution = def.TileAttribution
	}
	return opts
}
