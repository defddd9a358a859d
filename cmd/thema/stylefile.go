package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/themalib/thema/pkg/thema"
)

// styleFile is the YAML shape of a --style file. All fields are
// optional; unset fields keep the defaults Resolve applies.
type styleFile struct {
	Variable string    `yaml:"variable"`
	Title    string    `yaml:"title"`
	Palette  string    `yaml:"palette"`
	Breaks   []float64 `yaml:"breaks"`
	Classing string    `yaml:"classing"`
	Classes  int       `yaml:"classes"`

	FillOpacity    *float64 `yaml:"fill_opacity"`
	MissingColor   string   `yaml:"missing_color"`
	MissingOpacity *float64 `yaml:"missing_opacity"`
	BorderColor    string   `yaml:"border_color"`
	BorderWidth    *float64 `yaml:"border_width"`
	PointRadius    *float64 `yaml:"point_radius"`
	LineWidth      *float64 `yaml:"line_width"`

	Legend struct {
		Hide     bool   `yaml:"hide"`
		Position string `yaml:"position"`
	} `yaml:"legend"`

	ScaleBar       bool      `yaml:"scale_bar"`
	ScaleBarBreaks []float64 `yaml:"scale_bar_breaks"`
	Compass        bool      `yaml:"compass"`
	Credits        string    `yaml:"credits"`
}

// loadStyleFile reads a YAML style file and overlays it onto the
// default style spec.
func loadStyleFile(path string) (thema.StyleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return thema.StyleSpec{}, fmt.Errorf("style file: %w", err)
	}
	var sf styleFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return thema.StyleSpec{}, fmt.Errorf("style file %s: %w", path, err)
	}

	spec := thema.DefaultStyleSpec()
	spec.Variable = sf.Variable
	spec.Title = sf.Title
	spec.Credits = sf.Credits
	if sf.Palette != "" {
		spec.Palette = sf.Palette
	}
	if sf.Breaks != nil {
		spec.Breaks = sf.Breaks
	}
	if sf.Classing != "" {
		spec.Classing = sf.Classing
	}
	if sf.Classes > 0 {
		spec.Classes = sf.Classes
	}
	if sf.FillOpacity != nil {
		spec.FillOpacity = sf.FillOpacity
	}
	if sf.MissingColor != "" {
		spec.MissingColor = sf.MissingColor
	}
	if sf.MissingOpacity != nil {
		spec.MissingOpacity = *sf.MissingOpacity
	}
	if sf.BorderColor != "" {
		spec.BorderColor = sf.BorderColor
	}
	if sf.BorderWidth != nil {
		spec.BorderWidth = sf.BorderWidth
	}
	if sf.PointRadius != nil {
		spec.PointRadius = sf.PointRadius
	}
	if sf.LineWidth != nil {
		spec.LineWidth = sf.LineWidth
	}
	spec.HideLegend = sf.Legend.Hide
	if sf.Legend.Position != "" {
		spec.LegendPosition = sf.Legend.Position
	}
	spec.ScaleBar = sf.ScaleBar
	spec.ScaleBarBreaks = sf.ScaleBarBreaks
	spec.Compass = sf.Compass
	return spec, nil
}
