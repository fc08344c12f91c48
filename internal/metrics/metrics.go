// Package metrics exposes Prometheus counters for the matchday game.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GameMetrics holds the game counters on a dedicated registry.
// A nil *GameMetrics records nothing.
type GameMetrics struct {
	registry *prometheus.Registry

	RoundsAllocated  prometheus.Counter
	RoundTransitions *prometheus.CounterVec
	Wagers           *prometheus.CounterVec
	JollyPenalties   prometheus.Counter
	Evaluations      *prometheus.CounterVec
	OutcomeLookups   *prometheus.CounterVec
	Payments         prometheus.Counter
	Debt             *prometheus.GaugeVec
	Pool             prometheus.Gauge
}

// New creates and registers all game metrics.
func New() *GameMetrics {
	m := &GameMetrics{
		registry: prometheus.NewRegistry(),
		RoundsAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_rounds_allocated_total",
			Help: "Total number of rounds drawn",
		}),
		RoundTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchday_round_transitions_total",
				Help: "Round status transitions by target status",
			},
			[]string{"to"},
		),
		Wagers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchday_wagers_total",
				Help: "Accepted wager submissions",
			},
			[]string{"jolly"},
		),
		JollyPenalties: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_jolly_penalties_total",
			Help: "Jolly uses that exceeded the free quota",
		}),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchday_evaluations_total",
				Help: "Wager evaluations by verification type and resolution",
			},
			[]string{"type", "resolution"},
		),
		OutcomeLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchday_outcome_lookups_total",
				Help: "Match outcome lookups by result",
			},
			[]string{"result"},
		),
		Payments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchday_payments_total",
			Help: "Recorded debt payments",
		}),
		Debt: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "matchday_outstanding_debt",
				Help: "Outstanding debt per participant",
			},
			[]string{"handle"},
		),
		Pool: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "matchday_pool_total",
			Help: "Shared pool balance",
		}),
	}

	m.registry.MustRegister(
		m.RoundsAllocated,
		m.RoundTransitions,
		m.Wagers,
		m.JollyPenalties,
		m.Evaluations,
		m.OutcomeLookups,
		m.Payments,
		m.Debt,
		m.Pool,
	)
	return m
}

// Registry returns the prometheus registry.
func (m *GameMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RoundAllocated counts a draw.
func (m *GameMetrics) RoundAllocated() {
	if m == nil {
		return
	}
	m.RoundsAllocated.Inc()
}

// Transition counts a status change.
func (m *GameMetrics) Transition(to string) {
	if m == nil {
		return
	}
	m.RoundTransitions.WithLabelValues(to).Inc()
}

// WagerAccepted counts a submission and its jolly penalty if any.
func (m *GameMetrics) WagerAccepted(jolly, penalized bool) {
	if m == nil {
		return
	}
	label := "false"
	if jolly {
		label = "true"
	}
	m.Wagers.WithLabelValues(label).Inc()
	if penalized {
		m.JollyPenalties.Inc()
	}
}

// Evaluated counts a wager evaluation.
func (m *GameMetrics) Evaluated(verification, resolution string) {
	if m == nil {
		return
	}
	m.Evaluations.WithLabelValues(verification, resolution).Inc()
}

// OutcomeLookup counts a provider lookup; result is "ok", "not_found" or "error".
func (m *GameMetrics) OutcomeLookup(result string) {
	if m == nil {
		return
	}
	m.OutcomeLookups.WithLabelValues(result).Inc()
}

// PaymentRecorded counts a payment.
func (m *GameMetrics) PaymentRecorded() {
	if m == nil {
		return
	}
	m.Payments.Inc()
}

// SetBalances publishes the current debts and pool.
func (m *GameMetrics) SetBalances(debts map[string]int64, pool int64) {
	if m == nil {
		return
	}
	m.Debt.Reset()
	for handle, d := range debts {
		m.Debt.WithLabelValues(handle).Set(float64(d))
	}
	m.Pool.Set(float64(pool))
}
