// Package metrics exposes the auth and HTTP counters scraped at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sprints"

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	signIns        *prometheus.CounterVec
	deliveries     *prometheus.CounterVec
	sessionsMinted *prometheus.CounterVec
	authzDenials   prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		signIns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_requests_total",
			Help:      "Sign-in attempts by provider and outcome",
		}, []string{"provider", "outcome"}),

		deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "email_deliveries_total",
			Help:      "Outbound email dispatches by template and outcome",
		}, []string{"template", "outcome"}),

		sessionsMinted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_minted_total",
			Help:      "Session tokens issued by provider",
		}, []string{"provider"}),

		authzDenials: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denials_total",
			Help:      "Requests redirected to sign-in by the route authorizer",
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// SignIn counts a sign-in attempt.
func (m *Metrics) SignIn(provider, outcome string) {
	if m == nil {
		return
	}
	m.signIns.WithLabelValues(provider, outcome).Inc()
}

// Delivery counts an email dispatch.
func (m *Metrics) Delivery(template, outcome string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(template, outcome).Inc()
}

// SessionMinted counts an issued session.
func (m *Metrics) SessionMinted(provider string) {
	if m == nil {
		return
	}
	m.sessionsMinted.WithLabelValues(provider).Inc()
}

// Denied counts a redirect to sign-in.
func (m *Metrics) Denied() {
	if m == nil {
		return
	}
	m.authzDenials.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Instrument records request counts and durations keyed by chi route pattern.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
