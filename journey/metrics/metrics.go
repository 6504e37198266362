// Package metrics exports journey engine telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "journey"

// Metrics counts reducer actions, persistence failures, delayed transitions
// and simulated payments. A nil *Metrics records nothing.
type Metrics struct {
	actions       *prometheus.CounterVec
	persistErrors *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	payments      *prometheus.CounterVec
}

// New registers the journey collectors with reg, reusing collectors that
// are already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Reducer actions applied, by action type.",
		}, []string{"action"}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_errors_total",
			Help:      "Failed writes of a persisted state key.",
		}, []string{"key"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delayed_transitions_total",
			Help:      "Delayed page transitions, by outcome.",
		}, []string{"outcome"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulated_payments_total",
			Help:      "Simulated checkout payments, by outcome.",
		}, []string{"outcome"}),
	}
	collectors := []*prometheus.CounterVec{m.actions, m.persistErrors, m.transitions, m.payments}
	for i, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
				if !ok {
					return nil, fmt.Errorf("register journey metric: %w", err)
				}
				collectors[i] = existing
				continue
			}
			return nil, fmt.Errorf("register journey metric: %w", err)
		}
	}
	m.actions, m.persistErrors, m.transitions, m.payments = collectors[0], collectors[1], collectors[2], collectors[3]
	return m, nil
}

// RecordAction counts one applied reducer action.
func (m *Metrics) RecordAction(action string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action).Inc()
}

// RecordPersistError counts one failed key write.
func (m *Metrics) RecordPersistError(key string) {
	if m == nil {
		return
	}
	m.persistErrors.WithLabelValues(key).Inc()
}

// RecordTransition counts a fired or superseded delayed transition.
func (m *Metrics) RecordTransition(outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(outcome).Inc()
}

// RecordPayment counts a simulated payment outcome.
func (m *Metrics) RecordPayment(outcome string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(outcome).Inc()
}
