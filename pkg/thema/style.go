package thema

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"github.com/aclements/go-gg/palette"
)

// LegendSpec describes the resolved legend.
type LegendSpec struct {
	Show     bool
	Position string
	Title    string

	// Continuous legends draw a gradient bar with the domain ends as
	// labels; discrete legends draw one swatch per class.
	Continuous bool
	Labels     []string
	Swatches   []color.NRGBA
}

// ScaleBarSpec describes the resolved scale bar.
type ScaleBarSpec struct {
	Show bool
	// BreaksKm are the tick distances in kilometers. Nil means the
	// renderer picks round distances for the current extent.
	BreaksKm []float64
}

// ResolvedStyle is the output of Resolve: a complete, deterministic
// description of how each feature is painted and which annotations the
// renderer overlays. Identical datasets and specs always resolve to an
// identical value; there is no hidden state.
type ResolvedStyle struct {
	Variable string
	Title    string
	Credits  string

	// Continuous is true when values map through the ramp over the full
	// domain; otherwise Breaks and ClassColors define a binned mapping.
	Continuous  bool
	Ramp        palette.Continuous
	Breaks      []float64
	ClassColors []color.NRGBA

	// DomainMin and DomainMax span the observed values of Variable.
	DomainMin float64
	DomainMax float64

	FillOpacity float64
	// Missing is the exact fill for entries without data, including its
	// alpha. It is never produced by the domain mapping.
	Missing color.NRGBA

	Border      color.NRGBA
	BorderWidth float64
	PointRadius float64
	LineWidth   float64

	Legend   LegendSpec
	ScaleBar ScaleBarSpec
	Compass  bool
}

// Resolve computes the visual encoding for a dataset and style spec.
//
// It validates that spec.Variable exists in the dataset's attribute schema
// (UnknownVariableError otherwise), computes the color mapping from the
// variable's value domain, and resolves annotation placement with defaults
// for unset optional fields. Resolve has no side effects.
func Resolve(dataset ThematicDataset, spec StyleSpec) (ResolvedStyle, error) {
	spec = withStyleDefaults(spec)

	if spec.Variable == "" || !dataset.HasVariable(spec.Variable) {
		return ResolvedStyle{}, &UnknownVariableError{
			Variable:  spec.Variable,
			Available: dataset.Variables,
		}
	}

	ramp, err := Ramp(spec.Palette)
	if err != nil {
		return ResolvedStyle{}, err
	}

	min, max, ok := dataset.Domain(spec.Variable)
	if !ok {
		// Every entry is missing; any domain works, all fills fall back.
		min, max = 0, 1
	}

	rs := ResolvedStyle{
		Variable:    spec.Variable,
		Title:       spec.Title,
		Credits:     spec.Credits,
		Ramp:        ramp,
		DomainMin:   min,
		DomainMax:   max,
		FillOpacity: *spec.FillOpacity,
		BorderWidth: *spec.BorderWidth,
		PointRadius: *spec.PointRadius,
		LineWidth:   *spec.LineWidth,
		Compass:     spec.Compass,
		ScaleBar:    ScaleBarSpec{Show: spec.ScaleBar, BreaksKm: spec.ScaleBarBreaks},
	}

	rs.Missing, err = missingColor(spec)
	if err != nil {
		return ResolvedStyle{}, fmt.Errorf("missing color: %w", err)
	}
	rs.Border, err = parseHexColor(spec.BorderColor)
	if err != nil {
		return ResolvedStyle{}, fmt.Errorf("border color: %w", err)
	}

	breaks, err := resolveBreaks(dataset, spec, min, max)
	if err != nil {
		return ResolvedStyle{}, err
	}
	if breaks != nil {
		rs.Breaks = breaks
		rs.ClassColors = classColors(ramp, len(breaks)-1)
	} else {
		rs.Continuous = true
	}

	rs.Legend = resolveLegend(rs, spec)
	return rs, nil
}

// resolveBreaks returns the class boundaries, or nil for continuous
// classing.
func resolveBreaks(dataset ThematicDataset, spec StyleSpec, min, max float64) ([]float64, error) {
	classing := spec.Classing
	if len(spec.Breaks) > 0 {
		classing = ClassFixed
	}

	switch classing {
	case ClassContinuous:
		return nil, nil

	case ClassFixed:
		if len(spec.Breaks) < 2 {
			return nil, fmt.Errorf("fixed classing needs at least 2 break values, got %d", len(spec.Breaks))
		}
		for i := 1; i < len(spec.Breaks); i++ {
			if spec.Breaks[i] <= spec.Breaks[i-1] {
				return nil, fmt.Errorf("breaks must be strictly ascending (index %d)", i)
			}
		}
		out := make([]float64, len(spec.Breaks))
		copy(out, spec.Breaks)
		return out, nil

	case ClassQuantile:
		values := observedValues(dataset, spec.Variable)
		if len(values) == 0 {
			return nil, nil
		}
		sort.Float64s(values)
		breaks := make([]float64, 0, spec.Classes+1)
		for i := 0; i <= spec.Classes; i++ {
			pos := float64(i) / float64(spec.Classes) * float64(len(values)-1)
			breaks = append(breaks, values[int(math.Round(pos))])
		}
		return dedupeAscending(breaks), nil

	case ClassEqual:
		if max <= min {
			return nil, nil
		}
		breaks := make([]float64, spec.Classes+1)
		step := (max - min) / float64(spec.Classes)
		for i := range breaks {
			breaks[i] = min + step*float64(i)
		}
		breaks[len(breaks)-1] = max
		return breaks, nil

	default:
		return nil, fmt.Errorf("unknown classing method %q", classing)
	}
}

// ColorFor maps a data value to its fill color, before opacity.
//
// Continuous styles interpolate over [DomainMin, DomainMax]; binned styles
// pick the class containing the value, clamping values outside the break
// range into the first or last class.
func (rs ResolvedStyle) ColorFor(v float64) color.NRGBA {
	if rs.Continuous {
		t := 0.5
		if rs.DomainMax > rs.DomainMin {
			t = (v - rs.DomainMin) / (rs.DomainMax - rs.DomainMin)
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		return toNRGBA(rs.Ramp.Map(t))
	}
	return rs.ClassColors[rs.ClassIndex(v)]
}

// ClassIndex returns the zero-based class for a value under binned
// classing.
func (rs ResolvedStyle) ClassIndex(v float64) int {
	last := len(rs.Breaks) - 2
	for i := 1; i < len(rs.Breaks)-1; i++ {
		if v < rs.Breaks[i] {
			return i - 1
		}
	}
	if last < 0 {
		return 0
	}
	return last
}

// FillFor returns the complete fill for an entry, with opacity applied.
// hasData is false when the entry fell back to the missing-value fill.
func (rs ResolvedStyle) FillFor(e ThematicEntry) (fill color.NRGBA, hasData bool) {
	v, ok := e.Value(rs.Variable)
	if !ok {
		return rs.Missing, false
	}
	c := rs.ColorFor(v)
	c.A = uint8(math.Round(rs.FillOpacity * 255))
	return c, true
}

func resolveLegend(rs ResolvedStyle, spec StyleSpec) LegendSpec {
	leg := LegendSpec{
		Show:     !spec.HideLegend,
		Position: spec.LegendPosition,
		Title:    spec.Variable,
	}
	if rs.Continuous {
		leg.Continuous = true
		leg.Labels = []string{trimFloat(rs.DomainMin), trimFloat(rs.DomainMax)}
		return leg
	}
	leg.Swatches = rs.ClassColors
	leg.Labels = make([]string, len(rs.ClassColors))
	for i := range leg.Labels {
		leg.Labels[i] = trimFloat(rs.Breaks[i]) + " – " + trimFloat(rs.Breaks[i+1])
	}
	return leg
}

func missingColor(spec StyleSpec) (color.NRGBA, error) {
	c, err := parseHexColor(spec.MissingColor)
	if err != nil {
		return color.NRGBA{}, err
	}
	c.A = uint8(math.Round(spec.MissingOpacity * 255))
	return c, nil
}

func withStyleDefaults(spec StyleSpec) StyleSpec {
	def := DefaultStyleSpec()
	if spec.Palette == "" {
		spec.Palette = def.Palette
	}
	if spec.Classing == "" {
		spec.Classing = def.Classing
	}
	if spec.Classes <= 0 {
		spec.Classes = def.Classes
	}
	if spec.FillOpacity == nil {
		spec.FillOpacity = def.FillOpacity
	}
	if spec.MissingColor == "" {
		spec.MissingColor = def.MissingColor
	}
	if spec.BorderColor == "" {
		spec.BorderColor = def.BorderColor
	}
	if spec.BorderWidth == nil {
		spec.BorderWidth = def.BorderWidth
	}
	if spec.PointRadius == nil {
		spec.PointRadius = def.PointRadius
	}
	if spec.LineWidth == nil {
		spec.LineWidth = def.LineWidth
	}
	if spec.LegendPosition == "" {
		spec.LegendPosition = def.LegendPosition
	}
	return spec
}

func observedValues(dataset ThematicDataset, variable string) []float64 {
	values := make([]float64, 0, len(dataset.Entries))
	for _, e := range dataset.Entries {
		if v, ok := e.Value(variable); ok {
			values = append(values, v)
		}
	}
	return values
}

func dedupeAscending(breaks []float64) []float64 {
	out := breaks[:1]
	for _, b := range breaks[1:] {
		if b > out[len(out)-1] {
			out = append(out, b)
		}
	}
	if len(out) < 2 {
		return nil
	}
	return out
}

// trimFloat formats a break value without trailing zeros.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
