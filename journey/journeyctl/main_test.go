package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"JOURNEY_DELAY_BOOK_OPEN", "JOURNEY_DELAY_MAP_BURN", "JOURNEY_DELAY_PAGE_TURN",
		"JOURNEY_DELAY_TREASURE", "JOURNEY_DELAY_PAYMENT", "JOURNEY_DELAY_HERO_RETURN",
	} {
		t.Setenv(key, "1ms")
	}
	return &harness{t: t, db: filepath.Join(t.TempDir(), "journey.db")}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(&out)
	cmd.SetArgs(append([]string{"--db", h.db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) state() output {
	h.t.Helper()
	var got output
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("show", "--json")), &got))
	return got
}

func TestShowLandingByDefault(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("show")
	assert.Contains(t, out, "Traveler")
	assert.Contains(t, out, "your AI automation journey starts here")
	assert.Contains(t, out, "journeyctl begin")
}

func TestProgressPersistsBetweenCommands(t *testing.T) {
	h := newHarness(t)

	h.mustRun("name", "Frodo", "Baggins")
	h.mustRun("add", "shire-inbox", "rohan-reports")
	h.mustRun("remove", "rohan-reports")
	out := h.mustRun("page", "map")
	assert.Contains(t, out, "[x]  shire-inbox")
	assert.Contains(t, out, "Frodo Baggins and the Shire Inbox")

	got := h.state()
	assert.Equal(t, "Frodo Baggins", got.State.ViewerName)
	require.Len(t, got.State.Cart, 1)
	assert.Equal(t, types.PageMap, got.State.CurrentPage)
	assert.Equal(t, 239000.0, got.ROI.TotalAnnualSavings)
	assert.Equal(t, 2000.0, got.CheckoutTotal)
}

func TestProfilesAreSeparate(t *testing.T) {
	h := newHarness(t)

	h.mustRun("--profile", "sam", "name", "Sam")
	assert.Equal(t, types.DefaultViewerName, h.state().State.ViewerName)
}

func TestAddUnknownChapterFails(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "isengard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown chapter "isengard"`)
}

func TestROISliders(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("roi")
	assert.Contains(t, out, "Treasury Report")
	assert.Contains(t, out, "$234,000")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "3-Year Projection")

	h.mustRun("roi", "--team", "1000", "--hourly", "100")
	got := h.state()
	assert.Equal(t, types.ROIInputs{AvgHourlyCost: 100, HoursSavedPerWeek: 15, TeamSize: 100}, got.State.ROIInputs)
}

func TestPackageSelection(t *testing.T) {
	h := newHarness(t)

	h.mustRun("package", "return", "of", "the", "king")
	got := h.state()
	require.NotNil(t, got.State.SelectedPackage)
	assert.Equal(t, 14000.0, got.CheckoutTotal)
	assert.Equal(t, 30.0, got.ROI.ImplementationTime)

	h.mustRun("package", "none")
	assert.Nil(t, h.state().State.SelectedPackage)

	_, err := h.run("package", "hobbit")
	assert.Error(t, err)
}

func TestTimedJourneyToCelebration(t *testing.T) {
	h := newHarness(t)

	h.mustRun("begin")
	assert.Equal(t, types.PageMap, h.state().State.CurrentPage)

	h.mustRun("choose", "moria-invoices")
	got := h.state()
	assert.Equal(t, types.PageChapter, got.State.CurrentPage)
	assert.Equal(t, "moria-invoices", got.State.Cart[0].ID)

	h.mustRun("page", "roi", "--animate")
	h.mustRun("checkout")
	assert.Equal(t, types.PageCheckout, h.state().State.CurrentPage)

	out := h.mustRun("pay")
	assert.Contains(t, out, "The hero returns victorious!")
	got = h.state()
	assert.Equal(t, types.CheckoutIdle, got.State.Checkout.Stage, "checkout progress is not persisted")
}

func TestPayAwayFromCheckoutFails(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("pay")
	require.Error(t, err)
}

func TestStrictNavigation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("--strict", "page", "checkout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict navigation")

	h.mustRun("page", "checkout")
	assert.Equal(t, types.PageCheckout, h.state().State.CurrentPage)
}

func TestResetKeepsName(t *testing.T) {
	h := newHarness(t)

	h.mustRun("name", "Pippin")
	h.mustRun("add", "mordor-support")
	h.mustRun("page", "roi")
	out := h.mustRun("reset")
	assert.Contains(t, out, "Pippin")

	got := h.state()
	assert.Equal(t, "Pippin", got.State.ViewerName)
	assert.Empty(t, got.State.Cart)
	assert.Equal(t, types.PageLanding, got.State.CurrentPage)
}

func TestCatalogListing(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("catalog")
	assert.Contains(t, out, "gondor-onboarding")
	assert.Contains(t, out, "Fellowship")
	assert.Contains(t, out, "teamSize")

	var cat types.Catalog
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("catalog", "--json")), &cat))
	def, err := catalog.Default()
	require.NoError(t, err)
	assert.Len(t, cat.Chapters, len(def.Chapters))
}

func TestMetricsFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "journey.prom")

	h.mustRun("--metrics-file", path, "add", "shire-inbox")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `journey_actions_total{action="ADD_TO_CART"} 1`)
}

func TestRenderFaultShowsInterruptedScreen(t *testing.T) {
	var out bytes.Buffer
	cat, err := catalog.Default()
	require.NoError(t, err)
	v := newView(&out, cat)

	err = v.safely(func() { v.page(types.State{CurrentPage: "mount-doom"}) })
	require.ErrorIs(t, err, errInterrupted)
	assert.Contains(t, out.String(), "Journey Interrupted")
	assert.Contains(t, out.String(), "journeyctl reset")
}
