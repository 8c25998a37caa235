package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the solver's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	Solutions     *prometheus.CounterVec
	Backtracks    prometheus.Counter
	Exceptions    *prometheus.CounterVec
	QueryDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clausal",
			Subsystem: "engine",
			Name:      "transitions_total",
			Help:      "State machine transitions by target state",
		}, []string{"state"}),
		Solutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clausal",
			Subsystem: "engine",
			Name:      "solutions_total",
			Help:      "Top-level solutions by kind",
		}, []string{"kind"}),
		Backtracks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "clausal",
			Subsystem: "engine",
			Name:      "backtracks_total",
			Help:      "Choice points resumed",
		}),
		Exceptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clausal",
			Subsystem: "engine",
			Name:      "exceptions_total",
			Help:      "Thrown balls by outcome (caught or uncaught)",
		}, []string{"outcome"}),
		QueryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clausal",
			Subsystem: "engine",
			Name:      "query_duration_seconds",
			Help:      "Wall time from query start to its last solution",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
	}
}

func (m *Metrics) transition(state string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) solution(k Kind) {
	if m == nil {
		return
	}
	m.Solutions.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) backtrack() {
	if m == nil {
		return
	}
	m.Backtracks.Inc()
}

func (m *Metrics) exception(caught bool) {
	if m == nil {
		return
	}
	outcome := "uncaught"
	if caught {
		outcome = "caught"
	}
	m.Exceptions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.QueryDuration.Observe(d.Seconds())
}
