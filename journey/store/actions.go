package store

import "github.com/MABAIStrategies/kimi-automation-v1/journey/types"

// SetViewerNameAction replaces the viewer's name.
func SetViewerNameAction(name string) types.Action {
	return types.Action{Type: types.ActionSetViewerName, ViewerName: name}
}

// AddToCartAction adds a chapter snapshot to the cart.
func AddToCartAction(chapterID string) types.Action {
	return types.Action{Type: types.ActionAddToCart, ChapterID: chapterID}
}

// RemoveFromCartAction removes a chapter from the cart.
func RemoveFromCartAction(chapterID string) types.Action {
	return types.Action{Type: types.ActionRemoveFromCart, ChapterID: chapterID}
}

// UpdateROIInputsAction merges the supplied slider values.
func UpdateROIInputsAction(patch types.ROIInputsPatch) types.Action {
	return types.Action{Type: types.ActionUpdateROIInputs, ROIInputs: &patch}
}

// SelectPackageAction selects pkg, or clears the selection when pkg is nil.
func SelectPackageAction(pkg *types.Package) types.Action {
	return types.Action{Type: types.ActionSelectPackage, Package: pkg}
}

// SetCurrentPageAction moves to page.
func SetCurrentPageAction(page types.Page) types.Action {
	return types.Action{Type: types.ActionSetCurrentPage, Page: page}
}

// SetSelectedChaptersAction replaces the map's chapter selection.
func SetSelectedChaptersAction(ids []string) types.Action {
	return types.Action{Type: types.ActionSetSelectedChapters, Chapters: ids}
}

// ResetJourneyAction restores defaults, keeping the viewer's name.
func ResetJourneyAction() types.Action {
	return types.Action{Type: types.ActionResetJourney}
}

// SetLoadingAction toggles the transient loading flag.
func SetLoadingAction(loading bool) types.Action {
	return types.Action{Type: types.ActionSetLoading, Loading: loading}
}

// SetCheckoutAction records checkout progress.
func SetCheckoutAction(stage types.CheckoutStage, confirmation string) types.Action {
	return types.Action{Type: types.ActionSetCheckout, Checkout: &types.CheckoutStatus{Stage: stage, Confirmation: confirmation}}
}

// Float is a convenience for building ROIInputsPatch literals.
func Float(v float64) *float64 {
	return &v
}
