package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coworking"

// Authentication outcomes recorded by the gateway resolver.
const (
	OutcomeResolved      = "resolved"
	OutcomeMissingHeader = "missing_header"
	OutcomeInvalidMethod = "invalid_method"
	OutcomeUnknownLabel  = "unknown_label"
	OutcomeRejected      = "rejected"
	OutcomeUnavailable   = "unavailable"
	OutcomeAccessDenied  = "access_denied"
)

// Metrics groups the Prometheus collectors of a process. All methods are
// safe on a nil receiver so components can run without metrics in tests.
type Metrics struct {
	requests          *prometheus.CounterVec
	errors            *prometheus.CounterVec
	authOutcomes      *prometheus.CounterVec
	validationLatency *prometheus.HistogramVec
	rpcCalls          *prometheus.CounterVec
	rpcLatency        *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled by the gateway, by route, method and status.",
		}, []string{"route", "method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses, by route, method and error tag.",
		}, []string{"route", "method", "code"}),
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_outcomes_total",
			Help:      "Identity resolution outcomes at the gateway, by claimed domain.",
		}, []string{"domain", "outcome"}),
		validationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_validation_duration_seconds",
			Help:      "Latency of ValidateToken calls made by the gateway.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"domain"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_calls_total",
			Help:      "RPC calls served by an identity domain, by method and status code.",
		}, []string{"method", "code"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Latency of RPC calls served by an identity domain.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		m.requests,
		m.errors,
		m.authOutcomes,
		m.validationLatency,
		m.rpcCalls,
		m.rpcLatency,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordAuthOutcome counts one resolution attempt. label is the claimed
// (unverified) domain, or "none" when it could not be read.
func (m *Metrics) RecordAuthOutcome(label, outcome string) {
	if m == nil {
		return
	}
	if label == "" {
		label = "none"
	}
	m.authOutcomes.WithLabelValues(label, outcome).Inc()
}

// ObserveValidation records the latency of one ValidateToken call.
func (m *Metrics) ObserveValidation(label string, d time.Duration) {
	if m == nil {
		return
	}
	m.validationLatency.WithLabelValues(label).Observe(d.Seconds())
}

// RecordRPC counts one served RPC call.
func (m *Metrics) RecordRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcCalls.WithLabelValues(method, code).Inc()
	m.rpcLatency.WithLabelValues(method).Observe(d.Seconds())
}
