package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/themalib/thema/pkg/thema"
)

func TestLoadStyleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	content := `variable: prevalence
title: Prevalence by district
palette: reds
breaks: [0, 5, 15, 40]
fill_opacity: 0.8
missing_opacity: 1
border_width: 0.5
legend:
  position: topleft
scale_bar: true
compass: true
credits: Ministry of Health
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write style file: %v", err)
	}

	spec, err := loadStyleFile(path)
	if err != nil {
		t.Fatalf("loadStyleFile failed: %v", err)
	}
	if spec.Variable != "prevalence" {
		t.Errorf("Expected variable prevalence, got %q", spec.Variable)
	}
	if spec.Palette != "reds" {
		t.Errorf("Expected palette reds, got %q", spec.Palette)
	}
	if len(spec.Breaks) != 4 || spec.Breaks[3] != 40 {
		t.Errorf("Expected breaks [0 5 15 40], got %v", spec.Breaks)
	}
	if spec.FillOpacity == nil || *spec.FillOpacity != 0.8 {
		t.Errorf("Expected fill opacity 0.8, got %v", spec.FillOpacity)
	}
	if spec.MissingOpacity != 1 {
		t.Errorf("Expected missing opacity 1, got %g", spec.MissingOpacity)
	}
	if spec.BorderWidth == nil || *spec.BorderWidth != 0.5 {
		t.Errorf("Expected border width 0.5, got %v", spec.BorderWidth)
	}
	if spec.LegendPosition != "topleft" {
		t.Errorf("Expected legend position topleft, got %q", spec.LegendPosition)
	}
	if !spec.ScaleBar || !spec.Compass {
		t.Errorf("Expected scale bar and compass enabled")
	}
}

func TestLoadStyleFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "style.yaml")
	if err := os.WriteFile(path, []byte("variable: rate\n"), 0o644); err != nil {
		t.Fatalf("Failed to write style file: %v", err)
	}

	spec, err := loadStyleFile(path)
	if err != nil {
		t.Fatalf("loadStyleFile failed: %v", err)
	}
	def := thema.DefaultStyleSpec()
	if spec.Palette != def.Palette {
		t.Errorf("Expected default palette %q, got %q", def.Palette, spec.Palette)
	}
	if spec.FillOpacity == nil || *spec.FillOpacity != *def.FillOpacity {
		t.Errorf("Expected default fill opacity %g, got %v", *def.FillOpacity, spec.FillOpacity)
	}
	if spec.LegendPosition != def.LegendPosition {
		t.Errorf("Expected default legend position %q, got %q", def.LegendPosition, spec.LegendPosition)
	}
}

func TestLoadStyleFileErrors(t *testing.T) {
	if _, err := loadStyleFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("breaks: {not: a list}\n"), 0o644); err != nil {
		t.Fatalf("Failed to write style file: %v", err)
	}
	if _, err := loadStyleFile(path); err == nil {
		t.Errorf("Expected error for malformed yaml")
	}
}
