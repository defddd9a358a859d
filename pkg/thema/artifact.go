package thema

import (
	"os"
)

// Artifact kinds.
const (
	ArtifactPNG  = "png"
	ArtifactSVG  = "svg"
	ArtifactHTML = "html"
)

// MapArtifact is the rendered output of one rendering request: a static
// raster or vector image, or an interactive HTML document.
//
// Artifacts are request-scoped values; embedding them into a larger
// document is the consumer's concern.
type MapArtifact struct {
	// Kind is ArtifactPNG, ArtifactSVG, or ArtifactHTML.
	Kind string

	// Data is the complete encoded artifact.
	Data []byte

	// Width and Height are the pixel dimensions of static artifacts;
	// zero for interactive documents.
	Width  int
	Height int

	// Bounds is the geographic extent the artifact covers.
	Bounds Bounds
}

// WriteFile writes the artifact to path.
func (a MapArtifact) WriteFile(path string) error {
	return os.WriteFile(path, a.Data, 0o644)
}
