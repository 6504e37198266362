package store

import (
	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// Reducer applies actions to journey state. Reduce is pure: it never edits
// the state it is given and always returns the same result for the same
// inputs.
type Reducer struct {
	Catalog types.Catalog
	Policy  navigation.Policy
}

// Initial is the default state for cat, addressed to viewerName.
func Initial(cat types.Catalog, viewerName string) types.State {
	if viewerName == "" {
		viewerName = types.DefaultViewerName
	}
	return types.State{
		ViewerName:       viewerName,
		Cart:             []types.CartItem{},
		SelectedChapters: []string{},
		ROIInputs:        catalog.DefaultROIInputs(cat),
		CurrentPage:      types.PageLanding,
		Checkout:         types.CheckoutStatus{Stage: types.CheckoutIdle},
	}
}

// Reduce returns the state that follows st after a. Actions that cannot
// apply (unknown chapter, disallowed page, unknown type) return st.
func (r Reducer) Reduce(st types.State, a types.Action) types.State {
	switch a.Type {
	case types.ActionSetViewerName:
		st.ViewerName = a.ViewerName
		return st

	case types.ActionAddToCart:
		ch, ok := catalog.FindChapter(r.Catalog, a.ChapterID)
		if !ok || inCart(st.Cart, a.ChapterID) {
			return st
		}
		cart := make([]types.CartItem, 0, len(st.Cart)+1)
		cart = append(cart, st.Cart...)
		st.Cart = append(cart, types.CartItem{
			ID:         ch.ID,
			Title:      ch.Title,
			Price:      ch.Pricing.CostUSD,
			Savings:    ch.Savings.DollarsPerYear,
			HoursSaved: ch.Savings.HoursPerWeek,
		})
		return st

	case types.ActionRemoveFromCart:
		if !inCart(st.Cart, a.ChapterID) {
			return st
		}
		cart := make([]types.CartItem, 0, len(st.Cart))
		for _, item := range st.Cart {
			if item.ID != a.ChapterID {
				cart = append(cart, item)
			}
		}
		st.Cart = cart
		return st

	case types.ActionUpdateROIInputs:
		if a.ROIInputs == nil {
			return st
		}
		st.ROIInputs = catalog.ClampROIInputs(r.Catalog, MergeROIInputs(st.ROIInputs, *a.ROIInputs))
		return st

	case types.ActionSelectPackage:
		st.SelectedPackage = clonePackage(a.Package)
		return st

	case types.ActionSetCurrentPage:
		if !r.Policy.Allows(st.CurrentPage, a.Page) {
			return st
		}
		if st.CurrentPage == types.PageCheckout && a.Page != types.PageCheckout {
			// Checkout progress belongs to one visit of the page.
			st.Checkout = types.CheckoutStatus{Stage: types.CheckoutIdle}
			st.IsLoading = false
		}
		st.CurrentPage = a.Page
		return st

	case types.ActionSetSelectedChapters:
		st.SelectedChapters = cloneStrings(a.Chapters)
		return st

	case types.ActionResetJourney:
		next := Initial(r.Catalog, "")
		next.ViewerName = st.ViewerName
		return next

	case types.ActionSetLoading:
		st.IsLoading = a.Loading
		return st

	case types.ActionSetCheckout:
		if a.Checkout == nil {
			st.Checkout = types.CheckoutStatus{Stage: types.CheckoutIdle}
			return st
		}
		st.Checkout = *a.Checkout
		return st
	}
	return st
}

// MergeROIInputs overwrites only the fields present in patch.
func MergeROIInputs(in types.ROIInputs, patch types.ROIInputsPatch) types.ROIInputs {
	if patch.AvgHourlyCost != nil {
		in.AvgHourlyCost = *patch.AvgHourlyCost
	}
	if patch.HoursSavedPerWeek != nil {
		in.HoursSavedPerWeek = *patch.HoursSavedPerWeek
	}
	if patch.TeamSize != nil {
		in.TeamSize = *patch.TeamSize
	}
	return in
}

// Clone deep-copies st so callers cannot reach the store's slices.
func Clone(st types.State) types.State {
	st.Cart = append([]types.CartItem{}, st.Cart...)
	st.SelectedChapters = cloneStrings(st.SelectedChapters)
	st.SelectedPackage = clonePackage(st.SelectedPackage)
	return st
}

func inCart(cart []types.CartItem, id string) bool {
	for _, item := range cart {
		if item.ID == id {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}

func clonePackage(p *types.Package) *types.Package {
	if p == nil {
		return nil
	}
	out := *p
	out.Features = cloneStrings(p.Features)
	out.IncludedChapterIDs = cloneStrings(p.IncludedChapterIDs)
	return &out
}
