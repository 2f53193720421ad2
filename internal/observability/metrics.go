package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters for the report resolver and the
// AI endpoints. A nil *Metrics is valid and records nothing, so tests and
// wiring code can omit it.
type Metrics struct {
	ResolverSourceResults *prometheus.CounterVec // labels: source, outcome={hit,empty,error}
	ResolverErrors        prometheus.Counter
	DiagnoseCalls         *prometheus.CounterVec // labels: mode={online,offline}, outcome={success,error}
	ChatMessages          prometheus.Counter
	SignedURLCache        *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ResolverSourceResults,
		m.ResolverErrors,
		m.DiagnoseCalls,
		m.ChatMessages,
		m.SignedURLCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ResolverSourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytoscan",
			Name:      "resolver_source_results_total",
			Help:      "Report source attempts by source name and outcome.",
		}, []string{"source", "outcome"}),
		ResolverErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phytoscan",
			Name:      "resolver_errors_total",
			Help:      "Resolve cycles where every fallback failed.",
		}),
		DiagnoseCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytoscan",
			Name:      "diagnose_calls_total",
			Help:      "Diagnosis requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ChatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phytoscan",
			Name:      "chat_messages_total",
			Help:      "Assistant messages answered.",
		}),
		SignedURLCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phytoscan",
			Name:      "signed_url_cache_total",
			Help:      "Signed URL cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveResolverSource records one source attempt. Safe on nil receiver.
func (m *Metrics) ObserveResolverSource(source, outcome string) {
	if m == nil {
		return
	}
	m.ResolverSourceResults.WithLabelValues(source, outcome).Inc()
}

// ObserveResolverFailure records a resolve cycle with no usable fallback.
func (m *Metrics) ObserveResolverFailure() {
	if m == nil {
		return
	}
	m.ResolverErrors.Inc()
}

// ObserveDiagnose records one diagnosis request. Safe on nil receiver.
func (m *Metrics) ObserveDiagnose(mode, outcome string) {
	if m == nil {
		return
	}
	m.DiagnoseCalls.WithLabelValues(mode, outcome).Inc()
}

// ObserveChatMessage records one answered chat message. Safe on nil receiver.
func (m *Metrics) ObserveChatMessage() {
	if m == nil {
		return
	}
	m.ChatMessages.Inc()
}

// ObserveSignedURLCache records one cache lookup. Safe on nil receiver.
func (m *Metrics) ObserveSignedURLCache(result string) {
	if m == nil {
		return
	}
	m.SignedURLCache.WithLabelValues(result).Inc()
}
