package server

import (
	"bytes"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Brownie44l1/embedhttp/internal/request"
	"github.com/Brownie44l1/embedhttp/internal/response"
	"github.com/Brownie44l1/embedhttp/internal/router"
)

// Metrics tracks server activity in a Prometheus registry.
//
// Metrics:
//   - <ns>_active_connections: connections currently being served
//   - <ns>_requests_total: responses produced, by method and status code
//   - <ns>_request_duration_seconds: time to produce a response, by method
//   - <ns>_protocol_errors_total: requests rejected as malformed
//
// All methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	activeConnections prometheus.Gauge
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	protocolErrors    prometheus.Counter
}

// NewMetrics creates and registers the server metrics. A nil registry
// gets a fresh one.
func NewMetrics(namespace string, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "embedhttp"
	}

	m := &Metrics{
		registry: registry,

		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of connections currently being served",
		}),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of responses produced",
			},
			[]string{"method", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time from a parsed request to its response",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		protocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_errors_total",
			Help:      "Total number of malformed or oversized requests",
		}),
	}

	registry.MustRegister(
		m.activeConnections,
		m.requestsTotal,
		m.requestDuration,
		m.protocolErrors,
	)

	return m
}

// Registry returns the registry the metrics live in.
func (m *Metrics) Registry() *prometheus.Registry {
	if !m.enabled() {
		return nil
	}
	return m.registry
}

// enabled is false for a nil or hand-built Metrics; only NewMetrics
// registers the collectors.
func (m *Metrics) enabled() bool {
	return m != nil && m.registry != nil
}

func (m *Metrics) connOpened() {
	if m.enabled() {
		m.activeConnections.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m.enabled() {
		m.activeConnections.Dec()
	}
}

func (m *Metrics) protocolError() {
	if m.enabled() {
		m.protocolErrors.Inc()
	}
}

func (m *Metrics) observe(method string, code response.StatusCode, d time.Duration) {
	if !m.enabled() {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(int(code))).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Handler renders the registry in the Prometheus text format.
func (m *Metrics) Handler() router.Handler {
	return router.HandlerFunc(func(*request.Request) *response.Response {
		if !m.enabled() {
			return response.NotFound()
		}

		families, err := m.registry.Gather()
		if err != nil {
			return response.Error(response.StatusInternalServerError, err.Error())
		}

		var buf bytes.Buffer
		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		enc := expfmt.NewEncoder(&buf, format)
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				return response.Error(response.StatusInternalServerError, err.Error())
			}
		}

		return response.OK().SetBody(string(format), buf.Bytes())
	})
}
