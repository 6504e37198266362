package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	t.Parallel()

	cat, err := Default()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Chapters)
	assert.NotEmpty(t, cat.Packages)
	assert.Equal(t, "{{firstName}}", cat.Viewer.FirstNamePlaceholder)
	assert.Equal(t, float64(48), cat.ROI.Assumptions.WorkingWeeksPerYear)

	inputs := DefaultROIInputs(cat)
	assert.Equal(t, types.ROIInputs{AvgHourlyCost: 65, HoursSavedPerWeek: 15, TeamSize: 5}, inputs)
}

func TestLoadJSONDocument(t *testing.T) {
	t.Parallel()

	doc := `{
  "brand": {"companyName": "Acme"},
  "viewer": {"firstNamePlaceholder": "[name]"},
  "chapters": [
    {"id": "a", "title": "A for [name]", "pricing": {"costUSD": 100, "implHours": 4},
     "savings": {"hoursPerWeek": 1, "dollarsPerYear": 900}}
  ],
  "packages": [{"tier": "Gold", "priceUSD": 500, "includedChapterIds": ["a"]}],
  "roi": {
    "sliders": [{"id": "teamSize", "min": 1, "max": 10, "step": 1, "default": 3}],
    "assumptions": {"workingWeeksPerYear": 50}
  }
}`
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", cat.Brand.CompanyName)
	assert.Equal(t, "[name]", Placeholder(cat))

	ch, ok := FindChapter(cat, "a")
	require.True(t, ok)
	assert.Equal(t, float64(100), ch.Pricing.CostUSD)
	assert.Equal(t, float64(4), ImplHours(cat, "a"))
	assert.Zero(t, ImplHours(cat, "missing"))

	pkg, ok := FindPackage(cat, " gold ")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, pkg.IncludedChapterIDs)

	inputs := DefaultROIInputs(cat)
	assert.Equal(t, float64(3), inputs.TeamSize)
	assert.Equal(t, float64(65), inputs.AvgHourlyCost)
	assert.Equal(t, float64(15), inputs.HoursSavedPerWeek)
}

func TestLoadEmptyPathUsesEmbeddedCatalog(t *testing.T) {
	t.Parallel()

	cat, err := Load("  ")
	require.NoError(t, err)
	_, ok := FindChapter(cat, "shire-inbox")
	assert.True(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}

func TestParseDefaultsPlaceholder(t *testing.T) {
	t.Parallel()

	cat, err := Parse([]byte("roi:\n  assumptions:\n    workingWeeksPerYear: 48\n"))
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPlaceholder, cat.Viewer.FirstNamePlaceholder)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	t.Parallel()

	cat := types.Catalog{
		Chapters: []types.Chapter{{ID: "a"}, {ID: "a"}, {ID: ""}},
		ROI: types.ROIConfig{
			Sliders: []types.Slider{
				{ID: "mystery", Min: 0, Max: 1},
				{ID: types.SliderTeamSize, Min: 10, Max: 1},
				{ID: types.SliderAvgHourlyCost, Min: 10, Max: 20, Default: 50},
			},
		},
	}

	err := Validate(cat)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate id "a"`)
	assert.Contains(t, msg, "chapters[2].id: is required")
	assert.Contains(t, msg, `unknown slider id "mystery"`)
	assert.Contains(t, msg, "min is greater than max")
	assert.Contains(t, msg, "default is outside [min, max]")
	assert.Contains(t, msg, "workingWeeksPerYear: must be positive")

	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestClampROIInputs(t *testing.T) {
	t.Parallel()

	cat := types.Catalog{ROI: types.ROIConfig{Sliders: []types.Slider{
		{ID: types.SliderAvgHourlyCost, Min: 20, Max: 200},
		{ID: types.SliderTeamSize, Min: 1, Max: 100},
	}}}

	got := ClampROIInputs(cat, types.ROIInputs{AvgHourlyCost: 500, HoursSavedPerWeek: 999, TeamSize: 0})
	assert.Equal(t, float64(200), got.AvgHourlyCost)
	assert.Equal(t, float64(999), got.HoursSavedPerWeek, "no slider, no clamp")
	assert.Equal(t, float64(1), got.TeamSize)
}
