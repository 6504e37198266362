// Package roi derives the return-on-investment figures shown on the summary
// and checkout pages. Everything here is a pure function of its arguments.
package roi

import (
	"fmt"
	"math"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// PaybackPeriod is the number of months until savings cover the cost.
// Infinite is set when nothing is being paid back: no savings, or no cost.
type PaybackPeriod struct {
	Months   float64 `json:"months"`
	Infinite bool    `json:"infinite"`
}

// Never is the payback sentinel.
var Never = PaybackPeriod{Infinite: true}

func (p PaybackPeriod) String() string {
	if p.Infinite {
		return "never"
	}
	return fmt.Sprintf("%.1f months", p.Months)
}

// Summary is the full set of derived ROI figures.
type Summary struct {
	ChapterSavings          float64       `json:"chapterSavings"`
	ChapterHours            float64       `json:"chapterHours"`
	BaseSavings             float64       `json:"baseSavings"`
	TotalAnnualSavings      float64       `json:"totalAnnualSavings"`
	IndividualChapterCosts  float64       `json:"individualChapterCosts"`
	PackageCost             float64       `json:"packageCost"`
	TotalImplementationCost float64       `json:"totalImplementationCost"`
	PaybackPeriod           PaybackPeriod `json:"paybackPeriod"`
	ROIPercentage           float64       `json:"roiPercentage"`
	TotalHoursSaved         float64       `json:"totalHoursSaved"`
	ImplementationTime      float64       `json:"implementationTime"`
}

// Calculate derives the summary from the slider inputs, the cart, the
// selected package (nil for none) and the catalog.
func Calculate(inputs types.ROIInputs, cart []types.CartItem, pkg *types.Package, cat types.Catalog) Summary {
	var s Summary
	for _, item := range cart {
		s.ChapterSavings += item.Savings
		s.ChapterHours += item.HoursSaved
		s.IndividualChapterCosts += item.Price
	}

	weeks := cat.ROI.Assumptions.WorkingWeeksPerYear
	s.BaseSavings = inputs.HoursSavedPerWeek * weeks * inputs.AvgHourlyCost * inputs.TeamSize
	s.TotalAnnualSavings = s.BaseSavings + s.ChapterSavings

	if pkg != nil {
		s.PackageCost = pkg.PriceUSD
	}
	// A package supersedes individually priced chapters; quote the larger.
	s.TotalImplementationCost = math.Max(s.IndividualChapterCosts, s.PackageCost)

	s.PaybackPeriod = Payback(s.TotalImplementationCost, s.TotalAnnualSavings)
	s.ROIPercentage = Percentage(s.TotalAnnualSavings, s.TotalImplementationCost)
	s.TotalHoursSaved = inputs.HoursSavedPerWeek + s.ChapterHours
	s.ImplementationTime = ImplementationTime(cart, pkg, cat)
	return s
}

// ForState is Calculate over the relevant parts of a session state.
func ForState(st types.State, cat types.Catalog) Summary {
	return Calculate(st.ROIInputs, st.Cart, st.SelectedPackage, cat)
}

// Payback returns months to recoup cost, rounded to one decimal. A zero
// cost is a division by zero on the summary page and reads as Never.
func Payback(cost, annualSavings float64) PaybackPeriod {
	if annualSavings <= 0 || cost <= 0 {
		return Never
	}
	return PaybackPeriod{Months: Round1(cost / (annualSavings / 12))}
}

// Percentage returns the ROI percentage rounded to one decimal, or 0 when
// nothing is being spent.
func Percentage(annualSavings, cost float64) float64 {
	if cost <= 0 {
		return 0
	}
	return Round1((annualSavings - cost) / cost * 100)
}

// ImplementationTime is the wall-clock estimate in hours. Package chapters
// run in parallel so the slowest one bounds the work; loose cart items are
// done one after another.
func ImplementationTime(cart []types.CartItem, pkg *types.Package, cat types.Catalog) float64 {
	if pkg != nil {
		var longest float64
		for _, id := range pkg.IncludedChapterIDs {
			longest = math.Max(longest, catalog.ImplHours(cat, id))
		}
		return longest
	}
	var total float64
	for _, item := range cart {
		total += catalog.ImplHours(cat, item.ID)
	}
	return total
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// MaintenanceRate is the yearly upkeep after the first year, as a share of
// the implementation cost.
const MaintenanceRate = 0.1

// YearProjection is one row of the multi-year outlook.
type YearProjection struct {
	Year       int     `json:"year"`
	Investment float64 `json:"investment"`
	Savings    float64 `json:"savings"`
	Net        float64 `json:"net"`
	Cumulative float64 `json:"cumulative"`
}

// Project extends s over the given number of years. Year one pays the
// implementation cost; later years pay maintenance only.
func Project(s Summary, years int) []YearProjection {
	if years <= 0 {
		return nil
	}
	maintenance := s.TotalImplementationCost * MaintenanceRate
	out := make([]YearProjection, 0, years)
	for year := 1; year <= years; year++ {
		investment := maintenance
		if year == 1 {
			investment = s.TotalImplementationCost
		}
		out = append(out, YearProjection{
			Year:       year,
			Investment: investment,
			Savings:    s.TotalAnnualSavings,
			Net:        s.TotalAnnualSavings - investment,
			Cumulative: s.TotalAnnualSavings*float64(year) - s.TotalImplementationCost - maintenance*float64(year-1),
		})
	}
	return out
}
