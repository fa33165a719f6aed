// Package metrics exposes Prometheus collectors for statement processing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse outcomes used as the outcome label.
const (
	OutcomeSuccess          = "success"
	OutcomePasswordRequired = "password_required"
	OutcomeWrongPassword    = "wrong_password"
	OutcomeMalformed        = "malformed"
	OutcomeError            = "error"
)

// Metrics holds the service collectors on a dedicated registry.
type Metrics struct {
	registry      *prometheus.Registry
	parseTotal    *prometheus.CounterVec
	parseDuration prometheus.Histogram
	transactions  prometheus.Histogram
	filesPurged   prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pesa_statement_parse_total",
			Help: "Statement parse attempts by outcome.",
		}, []string{"outcome"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pesa_statement_parse_duration_seconds",
			Help:    "Time spent parsing a statement.",
			Buckets: prometheus.DefBuckets,
		}),
		transactions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pesa_statement_transactions",
			Help:    "Transactions recovered per parsed statement.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		filesPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pesa_statement_files_purged_total",
			Help: "Uploaded statement files removed by retention.",
		}),
	}

	reg.MustRegister(
		m.parseTotal,
		m.parseDuration,
		m.transactions,
		m.filesPurged,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveParse records one parse attempt.
func (m *Metrics) ObserveParse(outcome string, elapsed time.Duration, transactions int) {
	m.parseTotal.WithLabelValues(outcome).Inc()
	m.parseDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.transactions.Observe(float64(transactions))
	}
}

// FilesPurged adds n purged files.
func (m *Metrics) FilesPurged(n int) {
	m.filesPurged.Add(float64(n))
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
