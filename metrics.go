package multirow

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors a Store reports to.
type Metrics struct {
	transitions  *prometheus.CounterVec
	reverts      prometheus.Counter
	cacheLookups *prometheus.CounterVec
	materialize  prometheus.Histogram
	issues       *prometheus.CounterVec
}

// NewMetrics creates the store collectors under namespace and registers them
// with reg. A nil reg leaves them unregistered. Collectors that are already
// registered are reused.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Field intents applied, by intent type",
		}, []string{"type"}),
		reverts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clean_reverts_total",
			Help:      "Edits that collapsed because they restored the baseline value",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_lookups_total",
			Help:      "Materialized view cache lookups by result",
		}, []string{"result"}),
		materialize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Materialized view computation time",
			Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inspection_issues_total",
			Help:      "Invariant issues found after mutations, by issue type",
		}, []string{"type"}),
	}
	if reg == nil {
		return m
	}
	m.transitions = register(reg, m.transitions)
	m.reverts = register(reg, m.reverts)
	m.cacheLookups = register(reg, m.cacheLookups)
	m.materialize = register(reg, m.materialize)
	m.issues = register(reg, m.issues)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) observeTransition(t IntentType) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) observeRevert() {
	if m == nil {
		return
	}
	m.reverts.Inc()
}

func (m *Metrics) observeCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) observeMaterialize(start time.Time) {
	if m == nil {
		return
	}
	m.materialize.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeIssues(issues []Issue) {
	if m == nil {
		return
	}
	for _, issue := range issues {
		m.issues.WithLabelValues(issue.Type).Inc()
	}
}
