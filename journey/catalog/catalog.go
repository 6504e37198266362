// Package catalog loads and queries the read-only journey catalog: chapters,
// packages, ROI sliders and assumptions. Documents may be JSON or YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

//go:embed default_catalog.yaml
var defaultDocument []byte

// Fallbacks used when a slider is missing from the catalog.
const (
	fallbackAvgHourlyCost     = 65
	fallbackHoursSavedPerWeek = 15
	fallbackTeamSize          = 5
)

var knownSliders = map[string]bool{
	types.SliderAvgHourlyCost:     true,
	types.SliderHoursSavedPerWeek: true,
	types.SliderTeamSize:          true,
}

// Default returns the embedded catalog.
func Default() (types.Catalog, error) {
	return Parse(defaultDocument)
}

// Load reads a catalog from path, or the embedded catalog when path is empty.
func Load(path string) (types.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return types.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates a catalog document. JSON is accepted because
// it is a subset of YAML.
func Parse(data []byte) (types.Catalog, error) {
	var cat types.Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return types.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if strings.TrimSpace(cat.Viewer.FirstNamePlaceholder) == "" {
		cat.Viewer.FirstNamePlaceholder = types.DefaultPlaceholder
	}
	if err := Validate(cat); err != nil {
		return types.Catalog{}, err
	}
	return cat, nil
}

// Validate reports every structural problem in the catalog.
func Validate(cat types.Catalog) error {
	var errs []error
	seen := make(map[string]bool, len(cat.Chapters))
	for i, ch := range cat.Chapters {
		if strings.TrimSpace(ch.ID) == "" {
			errs = append(errs, &types.ValidationError{Field: fmt.Sprintf("chapters[%d].id", i), Msg: "is required"})
			continue
		}
		if seen[ch.ID] {
			errs = append(errs, &types.ValidationError{Field: fmt.Sprintf("chapters[%d].id", i), Msg: fmt.Sprintf("duplicate id %q", ch.ID)})
		}
		seen[ch.ID] = true
	}
	for i, s := range cat.ROI.Sliders {
		field := fmt.Sprintf("roi.sliders[%d]", i)
		if !knownSliders[s.ID] {
			errs = append(errs, &types.ValidationError{Field: field, Msg: fmt.Sprintf("unknown slider id %q", s.ID)})
			continue
		}
		if s.Min > s.Max {
			errs = append(errs, &types.ValidationError{Field: field, Msg: "min is greater than max"})
			continue
		}
		if s.Default < s.Min || s.Default > s.Max {
			errs = append(errs, &types.ValidationError{Field: field, Msg: "default is outside [min, max]"})
		}
	}
	if cat.ROI.Assumptions.WorkingWeeksPerYear <= 0 {
		errs = append(errs, &types.ValidationError{Field: "roi.assumptions.workingWeeksPerYear", Msg: "must be positive"})
	}
	return errors.Join(errs...)
}

// FindChapter looks a chapter up by id.
func FindChapter(cat types.Catalog, id string) (types.Chapter, bool) {
	for _, ch := range cat.Chapters {
		if ch.ID == id {
			return ch, true
		}
	}
	return types.Chapter{}, false
}

// FindPackage looks a package up by tier name, ignoring case.
func FindPackage(cat types.Catalog, tier string) (types.Package, bool) {
	for _, p := range cat.Packages {
		if strings.EqualFold(p.Tier, strings.TrimSpace(tier)) {
			return p, true
		}
	}
	return types.Package{}, false
}

// FindSlider looks a slider up by id.
func FindSlider(cat types.Catalog, id string) (types.Slider, bool) {
	for _, s := range cat.ROI.Sliders {
		if s.ID == id {
			return s, true
		}
	}
	return types.Slider{}, false
}

// ImplHours returns the implementation hours for a chapter id, or 0 when the
// id is not in the catalog.
func ImplHours(cat types.Catalog, id string) float64 {
	ch, ok := FindChapter(cat, id)
	if !ok {
		return 0
	}
	return ch.Pricing.ImplHours
}

// Placeholder is the token replaced by the viewer's name in titles.
func Placeholder(cat types.Catalog) string {
	if cat.Viewer.FirstNamePlaceholder == "" {
		return types.DefaultPlaceholder
	}
	return cat.Viewer.FirstNamePlaceholder
}

// DefaultROIInputs takes each slider's default, falling back to 65/15/5.
func DefaultROIInputs(cat types.Catalog) types.ROIInputs {
	return types.ROIInputs{
		AvgHourlyCost:     sliderDefault(cat, types.SliderAvgHourlyCost, fallbackAvgHourlyCost),
		HoursSavedPerWeek: sliderDefault(cat, types.SliderHoursSavedPerWeek, fallbackHoursSavedPerWeek),
		TeamSize:          sliderDefault(cat, types.SliderTeamSize, fallbackTeamSize),
	}
}

func sliderDefault(cat types.Catalog, id string, fallback float64) float64 {
	s, ok := FindSlider(cat, id)
	if !ok || s.Default == 0 {
		return fallback
	}
	return s.Default
}

// ClampROIInputs bounds each input by its slider. Inputs without a slider
// are left as given.
func ClampROIInputs(cat types.Catalog, in types.ROIInputs) types.ROIInputs {
	in.AvgHourlyCost = clamp(cat, types.SliderAvgHourlyCost, in.AvgHourlyCost)
	in.HoursSavedPerWeek = clamp(cat, types.SliderHoursSavedPerWeek, in.HoursSavedPerWeek)
	in.TeamSize = clamp(cat, types.SliderTeamSize, in.TeamSize)
	return in
}

func clamp(cat types.Catalog, id string, v float64) float64 {
	s, ok := FindSlider(cat, id)
	if !ok {
		return v
	}
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}
