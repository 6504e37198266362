package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/roi"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/store"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

// Signal and query names
const (
	SignalDispatchAction = "dispatch-action"
	SignalNavigateAfter  = "navigate-after"
	SignalSubmitPayment  = "submit-payment"
	SignalEndJourney     = "end-journey"

	QueryState         = "get-state"
	QueryROI           = "get-roi"
	QueryTitle         = "get-title"
	QueryCheckoutTotal = "get-checkout-total"
)

// JourneyResult is returned when a visitor's journey ends
type JourneyResult struct {
	SessionID string      `json:"sessionId"`
	State     types.State `json:"state"`
	ROI       roi.Summary `json:"roi"`
	Actions   int         `json:"actions"`
}

// pendingTransition is the single delayed step that may be waiting.
type pendingTransition struct {
	timer  workflow.Future
	cancel workflow.CancelFunc
	fire   func()
}

// JourneyWorkflow hosts one visitor's journey:
// - every signalled action runs through the reducer and is persisted
// - delayed transitions run on cancellable timers, at most one at a time
// - payment is simulated from the checkout page
// - the run continues as new once it has applied enough actions
func JourneyWorkflow(ctx workflow.Context, input types.JourneyInput) (JourneyResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.SessionID == "" {
		return JourneyResult{}, &types.ValidationError{Field: "sessionID", Msg: "required"}
	}
	cat := input.Catalog
	timings := input.Timings
	if timings == (types.Timings{}) {
		timings = types.DefaultTimings()
	}
	reducer := store.Reducer{Catalog: cat, Policy: navigation.PolicyFor(input.StrictNavigation)}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{"PermanentError", "ValidationError"},
		},
	})
	cueCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var st types.State
	if input.Carried != nil {
		st = store.Clone(*input.Carried)
	} else {
		var snap types.Snapshot
		if err := workflow.ExecuteActivity(ctx, "LoadSnapshot", input.SessionID, cat).Get(ctx, &snap); err != nil {
			logger.Warn("Snapshot load failed, starting fresh", "error", err)
			st = store.Initial(cat, "")
		} else {
			st = store.StateFromSnapshot(cat, snap)
		}
		if input.ViewerName != "" && st.ViewerName == types.DefaultViewerName {
			st.ViewerName = input.ViewerName
		}
	}

	// Register query handlers
	err := workflow.SetQueryHandler(ctx, QueryState, func() (types.State, error) {
		return st, nil
	})
	if err != nil {
		return JourneyResult{}, err
	}
	err = workflow.SetQueryHandler(ctx, QueryROI, func() (roi.Summary, error) {
		return roi.ForState(st, cat), nil
	})
	if err != nil {
		return JourneyResult{}, err
	}
	err = workflow.SetQueryHandler(ctx, QueryTitle, func(template string) (string, error) {
		return store.FormatTitle(template, catalog.Placeholder(cat), st.ViewerName), nil
	})
	if err != nil {
		return JourneyResult{}, err
	}
	err = workflow.SetQueryHandler(ctx, QueryCheckoutTotal, func() (float64, error) {
		return store.CheckoutTotal(st, cat), nil
	})
	if err != nil {
		return JourneyResult{}, err
	}

	actions := 0
	apply := func(a types.Action) {
		st = reducer.Reduce(st, a)
		actions++
		err := workflow.ExecuteActivity(ctx, "SaveSnapshot", input.SessionID, store.SnapshotOf(st)).Get(ctx, nil)
		if err != nil {
			logger.Warn("Persisting journey state failed", "action", a.Type, "error", err)
		}
	}
	playCue := func(cue string) {
		// Fire and forget; a missing sound never holds up the journey.
		workflow.ExecuteActivity(cueCtx, "PlayCue", cue)
	}

	var pending *pendingTransition
	cancelPending := func() {
		if pending == nil {
			return
		}
		pending.cancel()
		pending = nil
		if st.Checkout.Stage == types.CheckoutProcessing {
			logger.Info("Payment abandoned", "page", st.CurrentPage)
			apply(store.SetCheckoutAction(types.CheckoutIdle, ""))
			apply(store.SetLoadingAction(false))
		}
	}
	startTimer := func(d time.Duration, fire func()) {
		cancelPending()
		timerCtx, cancel := workflow.WithCancel(ctx)
		pending = &pendingTransition{timer: workflow.NewTimer(timerCtx, d), cancel: cancel, fire: fire}
	}

	completePayment := func() {
		var receipt types.PaymentReceipt
		amount := store.CheckoutTotal(st, cat)
		err := workflow.ExecuteActivity(ctx, "ProcessPayment", input.SessionID, amount).Get(ctx, &receipt)
		if err != nil {
			logger.Error("Simulated payment failed", "error", err)
			apply(store.SetCheckoutAction(types.CheckoutIdle, ""))
			apply(store.SetLoadingAction(false))
			return
		}
		apply(store.SetCheckoutAction(types.CheckoutSucceeded, receipt.Confirmation))
		apply(store.SetLoadingAction(false))
		playCue(types.CueSuccess)
		logger.Info("Payment confirmed", "confirmation", receipt.Confirmation, "amountUSD", receipt.AmountUSD)
		startTimer(timings.HeroReturn, func() {
			apply(store.SetCheckoutAction(types.CheckoutCelebrating, receipt.Confirmation))
		})
	}

	// Setup signal channels
	sigDispatch := workflow.GetSignalChannel(ctx, SignalDispatchAction)
	sigNavigate := workflow.GetSignalChannel(ctx, SignalNavigateAfter)
	sigPayment := workflow.GetSignalChannel(ctx, SignalSubmitPayment)
	sigEnd := workflow.GetSignalChannel(ctx, SignalEndJourney)

	ended := false
	for !ended {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(sigDispatch, func(ch workflow.ReceiveChannel, more bool) {
			var a types.Action
			ch.Receive(ctx, &a)
			switch a.Type {
			case types.ActionSetCurrentPage:
				if !reducer.Policy.Allows(st.CurrentPage, a.Page) {
					// A refused move leaves pending timers and the payment alone.
					logger.Info("Navigation refused", "to", a.Page, "page", st.CurrentPage)
					return
				}
				cancelPending()
			case types.ActionResetJourney:
				cancelPending()
			}
			apply(a)
		})

		selector.AddReceive(sigNavigate, func(ch workflow.ReceiveChannel, more bool) {
			var nav types.DelayedNavigation
			ch.Receive(ctx, &nav)
			if !navigation.Valid(nav.Page) {
				logger.Warn("Ignoring delayed navigation to unknown page", "page", nav.Page)
				return
			}
			if !reducer.Policy.Allows(st.CurrentPage, nav.Page) {
				logger.Info("Delayed navigation refused", "to", nav.Page, "page", st.CurrentPage)
				return
			}
			if nav.AddChapterID != "" {
				apply(store.AddToCartAction(nav.AddChapterID))
			}
			delay := nav.Delay
			if delay <= 0 {
				delay = navigation.DelayFor(timings, st.CurrentPage, nav.Page)
			}
			from, to := st.CurrentPage, nav.Page
			startTimer(delay, func() { apply(store.SetCurrentPageAction(to)) })
			playCue(navigation.CueFor(from, to))
		})

		selector.AddReceive(sigPayment, func(ch workflow.ReceiveChannel, more bool) {
			ch.Receive(ctx, nil)
			if st.CurrentPage != types.PageCheckout || st.Checkout.Stage != types.CheckoutIdle {
				logger.Warn("Ignoring payment request", "page", st.CurrentPage, "stage", st.Checkout.Stage)
				return
			}
			cancelPending()
			apply(store.SetLoadingAction(true))
			apply(store.SetCheckoutAction(types.CheckoutProcessing, ""))
			startTimer(timings.Payment, completePayment)
		})

		selector.AddReceive(sigEnd, func(ch workflow.ReceiveChannel, more bool) {
			ch.Receive(ctx, nil)
			ended = true
		})

		if pending != nil {
			p := pending
			selector.AddFuture(p.timer, func(f workflow.Future) {
				pending = nil
				if err := f.Get(ctx, nil); err != nil {
					return
				}
				p.fire()
			})
		}

		selector.Select(ctx)

		if !ended && input.MaxActionsPerRun > 0 && actions >= input.MaxActionsPerRun &&
			pending == nil && idle(sigDispatch, sigNavigate, sigPayment, sigEnd) {
			next := input
			carried := store.Clone(st)
			next.Carried = &carried
			logger.Info("Continuing as new", "actions", actions)
			return JourneyResult{}, workflow.NewContinueAsNewError(ctx, JourneyWorkflow, next)
		}
	}

	cancelPending()
	logger.Info("Journey ended", "sessionID", input.SessionID, "actions", actions)
	return JourneyResult{
		SessionID: input.SessionID,
		State:     st,
		ROI:       roi.ForState(st, cat),
		Actions:   actions,
	}, nil
}

func idle(channels ...workflow.ReceiveChannel) bool {
	for _, ch := range channels {
		if ch.Len() > 0 {
			return false
		}
	}
	return true
}
