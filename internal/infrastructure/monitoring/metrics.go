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

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ToolErrors   *prometheus.CounterVec

	// Sandbox metrics
	SecurityViolations *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	TotalToolCalls int64   `json:"total_tool_calls"`
	ToolFailures   int64   `json:"tool_failures"`
	Violations     int64   `json:"security_violations"`
	TotalDuration  float64 `json:"total_duration_seconds"`
	RequestCount   int64   `json:"request_count"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector backed by its own registry, so
// several instances can coexist in one process.
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
				Name: "fsagent_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsagent_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsagent_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsagent_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Tool metrics
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsagent_tool_calls_total",
				Help: "Total number of tool calls",
			},
			[]string{"service", "tool", "status"},
		),
		ToolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsagent_tool_duration_seconds",
				Help:    "Tool call duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "tool"},
		),
		ToolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsagent_tool_errors_total",
				Help: "Total number of failed tool calls by error code",
			},
			[]string{"service", "tool", "code"},
		),

		// Sandbox metrics
		SecurityViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsagent_security_violations_total",
				Help: "Total number of paths rejected by the sandbox guard",
			},
			[]string{"tool"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fsagent_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format for this registry.
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
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordToolCall records a tool call
func (m *Metrics) RecordToolCall(service, tool, status string, duration time.Duration) {
	m.ToolCalls.WithLabelValues(service, tool, status).Inc()
	m.ToolDuration.WithLabelValues(service, tool).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalToolCalls++
	m.mu.Unlock()
}

// RecordToolError records a failed tool call under its error code. Security
// violations are additionally counted on their own.
func (m *Metrics) RecordToolError(service, tool, code string) {
	m.ToolErrors.WithLabelValues(service, tool, code).Inc()

	m.mu.Lock()
	m.snapshot.ToolFailures++
	m.mu.Unlock()

	if code == "security_violation" {
		m.SecurityViolations.WithLabelValues(tool).Inc()
		m.mu.Lock()
		m.snapshot.Violations++
		m.mu.Unlock()
	}
}

// Snapshot returns the current counters for the JSON status endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
