package authapi

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the auth counters exported on /metrics.
type Metrics struct {
	Logins        *prometheus.CounterVec
	TokenVerifies *prometheus.CounterVec
	RateLimit     *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Subsystem: "auth",
			Name:      "login_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		TokenVerifies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Subsystem: "auth",
			Name:      "token_verify_total",
			Help:      "Bearer token verifications by result.",
		}, []string{"result"}),
		RateLimit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Subsystem: "rate_limit",
			Name:      "decisions_total",
			Help:      "Rate limiter decisions.",
		}, []string{"decision"}),
	}
	if reg != nil {
		reg.MustRegister(m.Logins, m.TokenVerifies, m.RateLimit)
	}
	return m
}
