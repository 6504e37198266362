package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

type stepTimer struct {
	d time.Duration
	f func()
}

func (*stepTimer) Stop() bool { return true }

type stepClock struct {
	mu     sync.Mutex
	timers []*stepTimer
}

func (c *stepClock) AfterFunc(d time.Duration, f func()) navigation.Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stepTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) last() *stepTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1]
}

type cueRecorder struct {
	played chan string
}

func (c *cueRecorder) PlayCue(_ context.Context, cue string) error {
	c.played <- cue
	return nil
}

type paymentCounter struct {
	mu       sync.Mutex
	outcomes []string
}

func (p *paymentCounter) RecordPayment(outcome string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcome)
}

func newTestNavigator(t *testing.T, opts ...NavigatorOption) (*Navigator, *stepClock) {
	t.Helper()
	clock := &stepClock{}
	s := New(context.Background(), defaultCatalog(t), storage.NewMemory().Bucket("p"))
	return NewNavigator(s, navigation.NewScheduler(navigation.WithClock(clock)), types.DefaultTimings(), opts...), clock
}

func TestBeginOpensTheBookAfterDelay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, clock := newTestNavigator(t)

	require.True(t, n.Begin(ctx))
	assert.Equal(t, types.PageLanding, n.Store().State().CurrentPage)
	assert.Equal(t, 1500*time.Millisecond, clock.last().d)

	clock.last().f()
	assert.Equal(t, types.PageMap, n.Store().State().CurrentPage)
	assert.False(t, n.Pending())
}

func TestChooseChapterAddsBeforeBurning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, clock := newTestNavigator(t)
	n.GoTo(ctx, types.PageMap)

	n.ChooseChapter(ctx, "moria-invoices")
	assert.True(t, n.Store().IsChapterSelected("moria-invoices"))
	assert.Equal(t, types.PageMap, n.Store().State().CurrentPage)
	assert.Equal(t, 2*time.Second, clock.last().d)

	clock.last().f()
	assert.Equal(t, types.PageChapter, n.Store().State().CurrentPage)
}

func TestDirectNavigationSupersedesDelayed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, clock := newTestNavigator(t)

	n.ProceedToCheckout(ctx)
	stale := clock.last()
	n.GoTo(ctx, types.PageMap)
	stale.f()

	assert.Equal(t, types.PageMap, n.Store().State().CurrentPage)
}

func TestResetSupersedesDelayed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	n, clock := newTestNavigator(t)
	n.Store().SetViewerName(ctx, "Bilbo")

	n.TurnPage(ctx, types.PageROI)
	stale := clock.last()
	st := n.Reset(ctx)
	stale.f()

	assert.Equal(t, types.PageLanding, n.Store().State().CurrentPage)
	assert.Equal(t, "Bilbo", st.ViewerName)
}

func TestPayRunsThroughCelebration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cues := &cueRecorder{played: make(chan string, 1)}
	payments := &paymentCounter{}
	n, clock := newTestNavigator(t, WithCues(cues), WithPayments(payments))

	assert.ErrorIs(t, n.Pay(ctx), ErrNotAtCheckout)

	n.GoTo(ctx, types.PageCheckout)
	require.NoError(t, n.Pay(ctx))
	st := n.Store().State()
	assert.True(t, st.IsLoading)
	assert.Equal(t, types.CheckoutProcessing, st.Checkout.Stage)
	assert.ErrorIs(t, n.Pay(ctx), ErrPaymentInProgress)
	assert.Equal(t, 3*time.Second, clock.last().d)

	clock.last().f()
	st = n.Store().State()
	assert.False(t, st.IsLoading)
	assert.Equal(t, types.CheckoutSucceeded, st.Checkout.Stage)
	assert.NotEmpty(t, st.Checkout.Confirmation)
	confirmation := st.Checkout.Confirmation

	select {
	case cue := <-cues.played:
		assert.Equal(t, types.CueSuccess, cue)
	case <-time.After(2 * time.Second):
		t.Fatal("success cue never played")
	}

	assert.Equal(t, 2*time.Second, clock.last().d)
	clock.last().f()
	st = n.Store().State()
	assert.Equal(t, types.CheckoutCelebrating, st.Checkout.Stage)
	assert.Equal(t, confirmation, st.Checkout.Confirmation)
	assert.Equal(t, []string{PaymentSucceeded}, payments.outcomes)
}

func TestLeavingCheckoutAbandonsPayment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	payments := &paymentCounter{}
	n, clock := newTestNavigator(t, WithPayments(payments))

	n.GoTo(ctx, types.PageCheckout)
	require.NoError(t, n.Pay(ctx))
	stale := clock.last()

	n.GoTo(ctx, types.PageROI)
	stale.f()

	st := n.Store().State()
	assert.Equal(t, types.CheckoutIdle, st.Checkout.Stage)
	assert.False(t, st.IsLoading)
	assert.Equal(t, []string{PaymentAbandoned}, payments.outcomes)
}

func newStrictNavigatorAtCheckout(t *testing.T, opts ...NavigatorOption) (*Navigator, *stepClock) {
	t.Helper()
	ctx := context.Background()
	clock := &stepClock{}
	s := New(ctx, defaultCatalog(t), storage.NewMemory().Bucket("p"), WithPolicy(navigation.Strict))
	n := NewNavigator(s, navigation.NewScheduler(navigation.WithClock(clock)), types.DefaultTimings(), opts...)
	for _, page := range []types.Page{types.PageMap, types.PageChapter, types.PageROI, types.PageCheckout} {
		n.GoTo(ctx, page)
	}
	require.Equal(t, types.PageCheckout, s.State().CurrentPage)
	return n, clock
}

func TestRefusedNavigationKeepsPaymentRunning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	payments := &paymentCounter{}
	n, clock := newStrictNavigatorAtCheckout(t, WithPayments(payments))

	require.NoError(t, n.Pay(ctx))
	n.GoTo(ctx, types.PageROI)

	st := n.Store().State()
	assert.Equal(t, types.PageCheckout, st.CurrentPage)
	assert.Equal(t, types.CheckoutProcessing, st.Checkout.Stage)
	assert.True(t, st.IsLoading)
	assert.True(t, n.Pending())

	clock.last().f()
	assert.Equal(t, types.CheckoutSucceeded, n.Store().State().Checkout.Stage)
	assert.Equal(t, []string{PaymentSucceeded}, payments.outcomes)
}

func TestRefusedDelayedNavigationIsNotScheduled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cues := &cueRecorder{played: make(chan string, 1)}
	n, clock := newStrictNavigatorAtCheckout(t, WithCues(cues))

	assert.False(t, n.TurnPage(ctx, types.PageROI))
	assert.False(t, n.Pending())
	assert.Empty(t, clock.timers)
	select {
	case cue := <-cues.played:
		t.Fatalf("cue %q played for a refused move", cue)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPayAgainAfterReturningToCheckout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	payments := &paymentCounter{}
	n, clock := newTestNavigator(t, WithPayments(payments))

	n.GoTo(ctx, types.PageCheckout)
	require.NoError(t, n.Pay(ctx))
	clock.last().f()
	clock.last().f()
	require.Equal(t, types.CheckoutCelebrating, n.Store().State().Checkout.Stage)
	assert.ErrorIs(t, n.Pay(ctx), ErrPaymentInProgress)

	n.GoTo(ctx, types.PageROI)
	assert.Equal(t, types.CheckoutIdle, n.Store().State().Checkout.Stage)
	n.GoTo(ctx, types.PageCheckout)
	require.NoError(t, n.Pay(ctx))
	clock.last().f()

	assert.Equal(t, []string{PaymentSucceeded, PaymentSucceeded}, payments.outcomes)
}

func TestClosedNavigatorSchedulesNothing(t *testing.T) {
	t.Parallel()

	n, _ := newTestNavigator(t)
	n.Close()
	assert.False(t, n.Begin(context.Background()))
}
