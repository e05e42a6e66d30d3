package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "indicadores"

// Metrics holds the Prometheus collectors exported by the API.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec   // labels: method, route, status
	HTTPDuration    *prometheus.HistogramVec // labels: method, route
	HTTPErrors      *prometheus.CounterVec   // labels: route, code
	LancamentoSaves *prometheus.CounterVec   // labels: schema_type, op={insert,update}
	SaveTimeouts    prometheus.Counter
	CSVRowsExported prometheus.Counter
	Cache           *prometheus.CounterVec // labels: key, result={hit,miss}
}

// NewMetrics creates and registers all collectors with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPErrors,
		m.LancamentoSaves,
		m.SaveTimeouts,
		m.CSVRowsExported,
		m.Cache,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 35},
		}, []string{"method", "route"}),
		HTTPErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Error responses by route and error code.",
		}, []string{"route", "code"}),
		LancamentoSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lancamentos_saved_total",
			Help:      "Indicator submissions persisted, by schema type and operation.",
		}, []string{"schema_type", "op"}),
		SaveTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lancamento_save_timeouts_total",
			Help:      "Submission saves abandoned by the timeout guard.",
		}),
		CSVRowsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_rows_exported_total",
			Help:      "Rows written to CSV exports.",
		}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_cache_total",
			Help:      "Reference-table cache lookups by key and result.",
		}, []string{"key", "result"}),
	}
}

// RecordRequest observes a finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, code string) {
	if m == nil {
		return
	}
	m.HTTPErrors.WithLabelValues(route, code).Inc()
}

func (m *Metrics) RecordSave(schemaType, op string) {
	if m == nil {
		return
	}
	m.LancamentoSaves.WithLabelValues(schemaType, op).Inc()
}

func (m *Metrics) RecordSaveTimeout() {
	if m == nil {
		return
	}
	m.SaveTimeouts.Inc()
}

func (m *Metrics) RecordExportRows(n int) {
	if m == nil {
		return
	}
	m.CSVRowsExported.Add(float64(n))
}

// RecordCache counts a cache lookup outcome.
func (m *Metrics) RecordCache(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.Cache.WithLabelValues(key, result).Inc()
}
