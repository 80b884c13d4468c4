package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the intake collectors, registered against one registry.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	RegistrationsTotal         *prometheus.CounterVec
	RateLimitedTotal           prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regintake_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regintake_http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regintake_registrations_total",
				Help: "Registration submissions by outcome.",
			},
			[]string{"result"},
		),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "regintake_rate_limited_total",
			Help: "Submissions rejected by the per-client rate limiter.",
		}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.RegistrationsTotal,
		m.RateLimitedTotal,
	)
	return m
}

// ObserveRegistration counts one submission; result is "accepted" or the rejection kind.
func (m *Metrics) ObserveRegistration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}
