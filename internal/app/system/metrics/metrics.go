// Package metrics exposes Prometheus collectors for HTTP traffic and the
// outbound gateway calls (geocoding, identity provider).
//
// All methods are safe to call on a nil *Metrics, which records nothing.
// Handlers and gateways in tests are built with nil metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Account origin labels.
const (
	OriginSignup = "signup"
	OriginGoogle = "google"
)

// Metrics owns a private registry so tests can build several instances.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	recordsCreated  prometheus.Counter
	accountsCreated *prometheus.CounterVec
}

// New creates and registers all collectors under the "newsgeo" namespace.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsgeo",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code",
	}, []string{"method", "route", "status"})
	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsgeo",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.gatewayCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsgeo",
		Name:      "gateway_calls_total",
		Help:      "Outbound gateway calls by gateway and outcome",
	}, []string{"gateway", "outcome"})
	m.gatewayDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newsgeo",
		Name:      "gateway_call_duration_seconds",
		Help:      "Outbound gateway call latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"gateway"})
	m.recordsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "newsgeo",
		Name:      "records_created_total",
		Help:      "News records stored",
	})
	m.accountsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newsgeo",
		Name:      "accounts_created_total",
		Help:      "Accounts created, by origin (signup or google)",
	}, []string{"origin"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.gatewayCalls,
		m.gatewayDuration,
		m.recordsCreated,
		m.accountsCreated,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry (nil for nil Metrics).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveGateway records one outbound gateway call.
func (m *Metrics) ObserveGateway(gateway, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(gateway, outcome).Inc()
	m.gatewayDuration.WithLabelValues(gateway).Observe(d.Seconds())
}

// RecordCreated counts a stored news record.
func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.recordsCreated.Inc()
}

// AccountCreated counts a new account; origin is OriginSignup or OriginGoogle.
func (m *Metrics) AccountCreated(origin string) {
	if m == nil {
		return
	}
	m.accountsCreated.WithLabelValues(origin).Inc()
}
