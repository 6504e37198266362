package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersIncrementCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordAction("ADD_TO_CART")
	m.RecordAction("ADD_TO_CART")
	m.RecordPersistError("cart")
	m.RecordTransition("superseded")
	m.RecordPayment("succeeded")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("ADD_TO_CART")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistErrors.WithLabelValues("cart")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("superseded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.payments.WithLabelValues("succeeded")))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	first, err := New(reg)
	require.NoError(t, err)
	second, err := New(reg)
	require.NoError(t, err)

	first.RecordAction("RESET_JOURNEY")
	second.RecordAction("RESET_JOURNEY")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.actions.WithLabelValues("RESET_JOURNEY")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAction("x")
		m.RecordPersistError("x")
		m.RecordTransition("x")
		m.RecordPayment("x")
	})
}
