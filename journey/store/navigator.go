package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// Payment outcomes reported to a PaymentRecorder.
const (
	PaymentSucceeded = "succeeded"
	PaymentAbandoned = "abandoned"
)

var (
	ErrNotAtCheckout     = errors.New("payment is only possible from the checkout page")
	ErrPaymentInProgress = errors.New("checkout is not idle")
)

// CuePlayer plays a named sound cue. Failures are ignored.
type CuePlayer interface {
	PlayCue(ctx context.Context, cue string) error
}

// PaymentRecorder counts simulated payment outcomes.
type PaymentRecorder interface {
	RecordPayment(outcome string)
}

// Navigator drives a Store through the timed page transitions and the
// simulated payment. Every navigation supersedes whatever was pending.
type Navigator struct {
	store    *Store
	sched    *navigation.Scheduler
	timings  types.Timings
	cues     CuePlayer
	payments PaymentRecorder
	logger   *zap.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithCues plays sound cues through p.
func WithCues(p CuePlayer) NavigatorOption {
	return func(n *Navigator) { n.cues = p }
}

// WithPayments reports payment outcomes to r.
func WithPayments(r PaymentRecorder) NavigatorOption {
	return func(n *Navigator) { n.payments = r }
}

// WithNavigatorLogger sets the logger.
func WithNavigatorLogger(l *zap.Logger) NavigatorOption {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNavigator wires s to sched using the given delays.
func NewNavigator(s *Store, sched *navigation.Scheduler, timings types.Timings, opts ...NavigatorOption) *Navigator {
	n := &Navigator{store: s, sched: sched, timings: timings, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Store returns the underlying store.
func (n *Navigator) Store() *Store {
	return n.store
}

// GoTo navigates immediately. A move the policy refuses leaves everything,
// including a pending transition, as it was.
func (n *Navigator) GoTo(ctx context.Context, page types.Page) types.State {
	st := n.store.State()
	if !n.store.Policy().Allows(st.CurrentPage, page) {
		n.logger.Info("navigation refused",
			zap.String("from", string(st.CurrentPage)), zap.String("to", string(page)))
		return st
	}
	n.supersede(ctx)
	return n.store.SetCurrentPage(ctx, page)
}

// GoToAfter navigates to page once delay has passed, unless something else
// happens first. It reports whether the transition was scheduled; a move the
// policy refuses is never scheduled.
func (n *Navigator) GoToAfter(ctx context.Context, page types.Page, delay time.Duration) bool {
	from := n.store.State().CurrentPage
	if !n.store.Policy().Allows(from, page) {
		return false
	}
	n.supersede(ctx)
	bg := context.WithoutCancel(ctx)
	if !n.sched.Schedule(delay, func() { n.store.SetCurrentPage(bg, page) }) {
		return false
	}
	n.playCue(bg, navigation.CueFor(from, page))
	return true
}

// Begin opens the book: landing to map.
func (n *Navigator) Begin(ctx context.Context) bool {
	return n.GoToAfter(ctx, types.PageMap, n.timings.BookOpen)
}

// ChooseChapter adds id to the cart and burns through the map to the
// chapter page.
func (n *Navigator) ChooseChapter(ctx context.Context, id string) bool {
	n.store.AddToCart(ctx, id)
	return n.GoToAfter(ctx, types.PageChapter, n.timings.MapBurn)
}

// TurnPage moves between the chapter, map and summary pages.
func (n *Navigator) TurnPage(ctx context.Context, page types.Page) bool {
	return n.GoToAfter(ctx, page, n.timings.PageTurn)
}

// ProceedToCheckout opens the treasure chest on the summary page.
func (n *Navigator) ProceedToCheckout(ctx context.Context) bool {
	return n.GoToAfter(ctx, types.PageCheckout, n.timings.Treasure)
}

// Reset cancels anything pending and starts the journey over.
func (n *Navigator) Reset(ctx context.Context) types.State {
	n.supersede(ctx)
	return n.store.ResetJourney(ctx)
}

// Pay starts the simulated payment. After the payment delay the checkout
// succeeds and a cue plays; after the hero's return it celebrates.
func (n *Navigator) Pay(ctx context.Context) error {
	st := n.store.State()
	if st.CurrentPage != types.PageCheckout {
		return ErrNotAtCheckout
	}
	if st.Checkout.Stage != types.CheckoutIdle && st.Checkout.Stage != "" {
		return ErrPaymentInProgress
	}
	n.supersede(ctx)

	n.store.SetLoading(ctx, true)
	n.store.SetCheckoutStage(ctx, types.CheckoutProcessing, "")

	bg := context.WithoutCancel(ctx)
	confirmation := uuid.NewString()
	n.sched.ScheduleChain(
		navigation.Step{Delay: n.timings.Payment, Run: func() {
			n.store.SetCheckoutStage(bg, types.CheckoutSucceeded, confirmation)
			n.store.SetLoading(bg, false)
			n.recordPayment(PaymentSucceeded)
			n.logger.Info("payment simulated", zap.String("confirmation", confirmation))
			n.playCue(bg, types.CueSuccess)
		}},
		navigation.Step{Delay: n.timings.HeroReturn, Run: func() {
			n.store.SetCheckoutStage(bg, types.CheckoutCelebrating, confirmation)
		}},
	)
	return nil
}

// Pending reports whether a delayed transition or payment step is waiting.
func (n *Navigator) Pending() bool {
	return n.sched.Pending()
}

// Close cancels anything pending. The navigator schedules nothing after.
func (n *Navigator) Close() {
	n.sched.Stop()
}

// supersede cancels the pending transition and unwinds a payment that had
// not finished processing.
func (n *Navigator) supersede(ctx context.Context) {
	if !n.sched.Cancel() {
		return
	}
	if n.store.State().Checkout.Stage != types.CheckoutProcessing {
		return
	}
	n.store.SetCheckoutStage(ctx, types.CheckoutIdle, "")
	n.store.SetLoading(ctx, false)
	n.recordPayment(PaymentAbandoned)
}

func (n *Navigator) playCue(ctx context.Context, cue string) {
	if n.cues == nil {
		return
	}
	go func() {
		if err := n.cues.PlayCue(ctx, cue); err != nil {
			n.logger.Debug("cue failed", zap.String("cue", cue), zap.Error(err))
		}
	}()
}

func (n *Navigator) recordPayment(outcome string) {
	if n.payments != nil {
		n.payments.RecordPayment(outcome)
	}
}
