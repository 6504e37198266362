package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/roi"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/store"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

var errInterrupted = errors.New("journey interrupted")

var (
	heading = color.New(color.FgYellow, color.Bold).SprintFunc()
	gold    = color.New(color.FgHiYellow).SprintFunc()
	ember   = color.New(color.FgRed).SprintFunc()
	muted   = color.New(color.FgHiBlack).SprintFunc()
)

// view renders journey pages as plain text.
type view struct {
	out     io.Writer
	printer *message.Printer
	catalog types.Catalog
}

func newView(out io.Writer, cat types.Catalog) *view {
	return &view{out: out, printer: message.NewPrinter(language.English), catalog: cat}
}

func (v *view) money(amount float64) string {
	return v.printer.Sprintf("$%.0f", amount)
}

func (v *view) number(n float64) string {
	return v.printer.Sprintf("%.1f", n)
}

func (v *view) title(template, viewerName string) string {
	return store.FormatTitle(template, catalog.Placeholder(v.catalog), viewerName)
}

func (v *view) line(format string, args ...any) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

// safely runs render behind a recovery boundary. A fault shows the
// interrupted screen instead; the journey on disk is left alone.
func (v *view) safely(render func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			v.interrupted(r)
			err = fmt.Errorf("%w: %v", errInterrupted, r)
		}
	}()
	render()
	return nil
}

func (v *view) interrupted(cause any) {
	v.line("")
	v.line("%s", ember("⚠ Journey Interrupted"))
	v.line("We encountered an unexpected obstacle in your adventure.")
	v.line("  %s", muted(fmt.Sprint(cause)))
	v.line("Restart Journey: journeyctl reset")
}

// page renders whichever page st is on.
func (v *view) page(st types.State) {
	switch st.CurrentPage {
	case types.PageLanding:
		v.landing(st)
	case types.PageMap:
		v.mapPage(st)
	case types.PageChapter:
		v.chapter(st)
	case types.PageROI:
		v.summary(st)
	case types.PageCheckout:
		v.checkout(st)
	default:
		panic(fmt.Sprintf("no page called %q", st.CurrentPage))
	}
}

func (v *view) landing(st types.State) {
	v.line("%s", heading(v.title(catalog.Placeholder(v.catalog), st.ViewerName)))
	v.line("your AI automation journey starts here")
	if v.catalog.Brand.CompanyName != "" {
		v.line("%s", muted("presented by "+v.catalog.Brand.CompanyName))
	}
	v.line("")
	v.line("Open the book with: journeyctl begin")
}

func (v *view) mapPage(st types.State) {
	v.line("%s", heading("The Map"))
	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	for _, ch := range v.catalog.Chapters {
		mark := "[ ]"
		if inCart(st.Cart, ch.ID) {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%sh/wk saved\n",
			mark, ch.ID, v.title(ch.Title, st.ViewerName), v.money(ch.Pricing.CostUSD), v.number(ch.Savings.HoursPerWeek))
	}
	_ = tw.Flush()
	if len(st.SelectedChapters) > 0 {
		v.line("Marked on the map: %s", strings.Join(st.SelectedChapters, ", "))
	}
}

func (v *view) chapter(st types.State) {
	v.line("%s", heading("Chapters in your quest"))
	if len(st.Cart) == 0 {
		v.line("No chapter chosen yet. Add one with: journeyctl add <chapter-id>")
		return
	}
	for _, item := range st.Cart {
		ch, ok := catalog.FindChapter(v.catalog, item.ID)
		v.line("")
		v.line("%s  %s", gold(v.title(item.Title, st.ViewerName)), muted(item.ID))
		if ok {
			if ch.Summary != "" {
				v.line("  %s", ch.Summary)
			}
			if len(ch.Tools) > 0 {
				v.line("  Tools: %s", strings.Join(ch.Tools, ", "))
			}
			for _, info := range ch.HoverInfo {
				v.line("  • %s", info)
			}
		}
		v.line("  Cost %s · saves %sh/wk · %s/yr", v.money(item.Price), v.number(item.HoursSaved), v.money(item.Savings))
	}
}

func (v *view) summary(st types.State) {
	s := roi.ForState(st, v.catalog)
	v.line("%s", heading("Treasury Report"))
	v.line("Hourly cost %s · %s h/wk saved · team of %s",
		v.money(st.ROIInputs.AvgHourlyCost), v.number(st.ROIInputs.HoursSavedPerWeek), v.number(st.ROIInputs.TeamSize))
	if st.SelectedPackage != nil {
		v.line("Package: %s (%s)", st.SelectedPackage.Tier, v.money(st.SelectedPackage.PriceUSD))
	}
	v.line("")

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Annual savings\t%s\n", gold(v.money(s.TotalAnnualSavings)))
	fmt.Fprintf(tw, "Implementation cost\t%s\n", v.money(s.TotalImplementationCost))
	fmt.Fprintf(tw, "ROI\t%s%%\n", v.number(s.ROIPercentage))
	fmt.Fprintf(tw, "Payback\t%s\n", s.PaybackPeriod)
	fmt.Fprintf(tw, "Hours saved per week\t%s\n", v.number(s.TotalHoursSaved))
	fmt.Fprintf(tw, "Implementation time\t%sh\n", v.number(s.ImplementationTime))
	_ = tw.Flush()

	v.line("")
	v.line("%s", heading("3-Year Projection"))
	tw = tabwriter.NewWriter(v.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tInvestment\tSavings\tNet ROI\tCumulative\t")
	for _, row := range roi.Project(s, 3) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			row.Year, v.money(row.Investment), v.money(row.Savings), v.money(row.Net), v.money(row.Cumulative))
	}
	_ = tw.Flush()
	for _, note := range v.catalog.ROI.Assumptions.Notes {
		v.line("%s", muted("* "+note))
	}
}

func (v *view) checkout(st types.State) {
	v.line("%s", heading("The Back Cover"))
	for _, item := range st.Cart {
		v.line("  %s  %s", v.title(item.Title, st.ViewerName), v.money(item.Price))
	}
	if st.SelectedPackage != nil {
		v.line("  Package %s replaces individual pricing", st.SelectedPackage.Tier)
	}
	v.line("Total: %s", gold(v.money(store.CheckoutTotal(st, v.catalog))))

	switch st.Checkout.Stage {
	case types.CheckoutProcessing:
		v.line("Processing payment…")
	case types.CheckoutSucceeded:
		v.line("Payment confirmed: %s", st.Checkout.Confirmation)
	case types.CheckoutCelebrating:
		v.line("%s", gold("The hero returns victorious!"))
		v.line("Confirmation %s", st.Checkout.Confirmation)
	default:
		v.line("Seal the deal with: journeyctl pay")
	}
}

func (v *view) catalogListing() {
	v.line("%s", heading("Chapters"))
	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	for _, ch := range v.catalog.Chapters {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%sh\n", ch.ID, ch.Title, v.money(ch.Pricing.CostUSD), v.number(ch.Pricing.ImplHours))
	}
	_ = tw.Flush()

	v.line("")
	v.line("%s", heading("Packages"))
	for _, p := range v.catalog.Packages {
		v.line("%s  %s  %s", gold(p.Tier), v.money(p.PriceUSD), muted(strings.Join(p.IncludedChapterIDs, ", ")))
		if p.Description != "" {
			v.line("  %s", p.Description)
		}
	}

	v.line("")
	v.line("%s", heading("ROI sliders"))
	for _, s := range v.catalog.ROI.Sliders {
		v.line("%s  %s..%s (default %s)", s.ID, v.number(s.Min), v.number(s.Max), v.number(s.Default))
	}
}

func inCart(cart []types.CartItem, id string) bool {
	for _, item := range cart {
		if item.ID == id {
			return true
		}
	}
	return false
}
