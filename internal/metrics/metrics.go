// Package metrics provides Prometheus instrumentation for Customer Core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records operational metrics. Services and middleware use the
// interface; the Prometheus implementation lives behind it so tests can pass
// a fresh registry.
type Collector interface {
	RecordLogin(outcome string)
	RecordTokenVerification(outcome string)
	RecordHTTPRequest(method, route string, statusCode int)
	RecordHTTPLatency(route string, duration time.Duration)
}

// PrometheusCollector implements Collector using prometheus counters and
// histograms registered on a caller-supplied registry.
type PrometheusCollector struct {
	logins            *prometheus.CounterVec
	tokenVerification *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

// NewCollector creates a collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customercore_logins_total",
			Help: "Login attempts by outcome (success, invalid_credentials, inactive_account, rate_limited).",
		}, []string{"outcome"}),
		tokenVerification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customercore_token_verifications_total",
			Help: "Bearer token verifications by outcome (success, malformed, signature, expired, rejected).",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "customercore_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "customercore_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.logins,
		c.tokenVerification,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

// RecordLogin counts a login attempt by outcome.
func (c *PrometheusCollector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordTokenVerification counts a bearer token verification by outcome.
func (c *PrometheusCollector) RecordTokenVerification(outcome string) {
	c.tokenVerification.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest counts a completed HTTP request.
func (c *PrometheusCollector) RecordHTTPRequest(method, route string, statusCode int) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency observes the duration of a completed HTTP request.
func (c *PrometheusCollector) RecordHTTPLatency(route string, duration time.Duration) {
	c.httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the HTTP handler that serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Collector that discards everything. Used where metrics wiring is optional.
type Nop struct{}

func (Nop) RecordLogin(string)                  {}
func (Nop) RecordTokenVerification(string)      {}
func (Nop) RecordHTTPRequest(string, string, int) {}
func (Nop) RecordHTTPLatency(string, time.Duration) {}
