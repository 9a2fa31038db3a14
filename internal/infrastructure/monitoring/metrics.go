package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Registry metrics
	Bundles   prometheus.Gauge
	Mutations *prometheus.CounterVec

	// Query metrics
	IntentQueries       prometheus.Counter
	IntentQueryDuration prometheus.Histogram
	Projections         *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for the JSON API
type MetricsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	Bundles       int64   `json:"bundles"`
	Mutations     int64   `json:"mutations"`
	IntentQueries int64   `json:"intent_queries"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector backed by its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlekit_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlekit_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlekit_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlekit_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Registry metrics
		Bundles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "bundlekit_bundles",
				Help: "Number of installed bundles",
			},
		),
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlekit_mutations_total",
				Help: "Total number of bundle mutations",
			},
			[]string{"op", "result"},
		),

		// Query metrics
		IntentQueries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bundlekit_intent_queries_total",
				Help: "Total number of intent and data queries",
			},
		),
		IntentQueryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bundlekit_intent_query_duration_seconds",
				Help:    "Intent query duration in seconds",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
		),
		Projections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlekit_projections_total",
				Help: "Total number of projected views",
			},
			[]string{"view"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bundlekit_uptime_seconds",
			Help: "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordMutation counts one bundle mutation by operation and outcome
func (m *Metrics) RecordMutation(op string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.Mutations.WithLabelValues(op, result).Inc()

	m.mu.Lock()
	m.snapshot.Mutations++
	m.mu.Unlock()
}

// RecordIntentQuery records one intent or data query
func (m *Metrics) RecordIntentQuery(duration time.Duration) {
	m.IntentQueries.Inc()
	m.IntentQueryDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.IntentQueries++
	m.mu.Unlock()
}

// RecordProjection counts one projected view
func (m *Metrics) RecordProjection(view string) {
	m.Projections.WithLabelValues(view).Inc()
}

// SetBundles sets the number of installed bundles
func (m *Metrics) SetBundles(count int) {
	m.Bundles.Set(float64(count))
	m.mu.Lock()
	m.snapshot.Bundles = int64(count)
	m.mu.Unlock()
}

// Snapshot returns a copy of the current values
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
