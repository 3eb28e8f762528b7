// Package metrics holds the Prometheus collectors of the split ledger.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Engine operation label values.
const (
	OpSplit    = "split"
	OpBalances = "balances"
	OpSimplify = "simplify"
)

// Metrics bundles every collector. Build one per registry with New.
type Metrics struct {
	Splits              *prometheus.CounterVec
	BalanceComputations prometheus.Counter
	Suggestions         prometheus.Counter
	InconsistentLedger  prometheus.Counter
	EngineDuration      *prometheus.HistogramVec
	Events              *prometheus.CounterVec
	EventsDropped       prometheus.Counter
}

// New creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Splits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_splits_total",
			Help: "Split computations by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		BalanceComputations: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_balance_computations_total",
			Help: "Group or user balance folds performed",
		}),
		Suggestions: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_suggestions_total",
			Help: "Settlement suggestions emitted by the debt simplifier",
		}),
		InconsistentLedger: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_inconsistent_ledger_total",
			Help: "Simplifications aborted because balances did not sum to zero",
		}),
		EngineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splitledger_engine_duration_seconds",
			Help:    "Time spent in engine computations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation"}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "splitledger_events_total",
			Help: "Event deliveries by sink and outcome",
		}, []string{"sink", "outcome"}),
		EventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_events_dropped_total",
			Help: "Events dropped because the queue was full",
		}),
	}
}

// ObserveEngine records the duration of an engine operation started at start.
func (m *Metrics) ObserveEngine(operation string, start time.Time) {
	m.EngineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Outcome maps an error to an outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
