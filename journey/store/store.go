// Package store owns a journey session: the state, the reducer that changes
// it and the per-key persistence behind it.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/roi"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// Recorder receives store telemetry. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordAction(action string)
	RecordPersistError(key string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAction(string)       {}
func (nopRecorder) RecordPersistError(string) {}

// Store is one visitor's journey. Operations never fail: persistence
// problems are logged and counted, and the in-memory state moves on.
type Store struct {
	reducer  Reducer
	kv       storage.KV
	logger   *zap.Logger
	recorder Recorder

	mu    sync.Mutex
	state types.State
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithPolicy sets the navigation policy. The default is navigation.Free.
func WithPolicy(p navigation.Policy) Option {
	return func(s *Store) { s.reducer.Policy = p }
}

// New rehydrates a session for cat from kv.
func New(ctx context.Context, cat types.Catalog, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		reducer:  Reducer{Catalog: cat, Policy: navigation.Free},
		kv:       kv,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = StateFromSnapshot(cat, LoadSnapshot(ctx, kv, cat, s.logger))
	return s
}

// Dispatch applies a, persists the result and returns it.
func (s *Store) Dispatch(ctx context.Context, a types.Action) types.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.reducer.Reduce(s.state, a)
	if a.Type == types.ActionSetCurrentPage && next.CurrentPage != a.Page {
		s.logger.Info("navigation refused",
			zap.String("from", string(s.state.CurrentPage)),
			zap.String("to", string(a.Page)),
			zap.Stringer("policy", s.reducer.Policy))
	}
	s.state = next
	s.recorder.RecordAction(string(a.Type))

	if err := Save(ctx, s.kv, SnapshotOf(next)); err != nil {
		for _, key := range FailedKeys(err) {
			s.recorder.RecordPersistError(key)
		}
		s.logger.Warn("persist journey state", zap.Error(err))
	}
	return Clone(next)
}

// SetViewerName changes who the journey is addressed to.
func (s *Store) SetViewerName(ctx context.Context, name string) types.State {
	return s.Dispatch(ctx, SetViewerNameAction(name))
}

// AddToCart adds chapter id, once.
func (s *Store) AddToCart(ctx context.Context, id string) types.State {
	return s.Dispatch(ctx, AddToCartAction(id))
}

// RemoveFromCart drops chapter id.
func (s *Store) RemoveFromCart(ctx context.Context, id string) types.State {
	return s.Dispatch(ctx, RemoveFromCartAction(id))
}

// UpdateROIInputs merges patch into the slider values.
func (s *Store) UpdateROIInputs(ctx context.Context, patch types.ROIInputsPatch) types.State {
	return s.Dispatch(ctx, UpdateROIInputsAction(patch))
}

// SelectPackage selects pkg; nil clears it.
func (s *Store) SelectPackage(ctx context.Context, pkg *types.Package) types.State {
	return s.Dispatch(ctx, SelectPackageAction(pkg))
}

// SetCurrentPage navigates immediately.
func (s *Store) SetCurrentPage(ctx context.Context, page types.Page) types.State {
	return s.Dispatch(ctx, SetCurrentPageAction(page))
}

// SetSelectedChapters replaces the map selection.
func (s *Store) SetSelectedChapters(ctx context.Context, ids []string) types.State {
	return s.Dispatch(ctx, SetSelectedChaptersAction(ids))
}

// ResetJourney starts over, keeping the viewer's name.
func (s *Store) ResetJourney(ctx context.Context) types.State {
	return s.Dispatch(ctx, ResetJourneyAction())
}

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(ctx context.Context, loading bool) types.State {
	return s.Dispatch(ctx, SetLoadingAction(loading))
}

// SetCheckoutStage records checkout progress.
func (s *Store) SetCheckoutStage(ctx context.Context, stage types.CheckoutStage, confirmation string) types.State {
	return s.Dispatch(ctx, SetCheckoutAction(stage, confirmation))
}

// State returns a copy of the current state.
func (s *Store) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.state)
}

// Catalog returns the catalog the session was built from.
func (s *Store) Catalog() types.Catalog {
	return s.reducer.Catalog
}

// Policy returns the navigation policy in force.
func (s *Store) Policy() navigation.Policy {
	return s.reducer.Policy
}

// ROI derives the summary from the current state.
func (s *Store) ROI() roi.Summary {
	return roi.ForState(s.State(), s.reducer.Catalog)
}

// FormattedTitle personalises template for the current viewer.
func (s *Store) FormattedTitle(template string) string {
	return FormatTitle(template, catalog.Placeholder(s.reducer.Catalog), s.State().ViewerName)
}

// IsChapterSelected reports whether chapter id is in the cart.
func (s *Store) IsChapterSelected(id string) bool {
	return inCart(s.State().Cart, id)
}

// CartTotal sums the prices in the cart.
func (s *Store) CartTotal() float64 {
	return CartTotal(s.State().Cart)
}

// CheckoutTotal is the amount quoted on the checkout page.
func (s *Store) CheckoutTotal() float64 {
	return CheckoutTotal(s.State(), s.reducer.Catalog)
}

// CartTotal sums item prices.
func CartTotal(cart []types.CartItem) float64 {
	var total float64
	for _, item := range cart {
		total += item.Price
	}
	return total
}

// CheckoutTotal is the selected package's price, or the implementation
// cost of the cart when no package is selected.
func CheckoutTotal(st types.State, cat types.Catalog) float64 {
	if st.SelectedPackage != nil {
		return st.SelectedPackage.PriceUSD
	}
	return roi.ForState(st, cat).TotalImplementationCost
}
