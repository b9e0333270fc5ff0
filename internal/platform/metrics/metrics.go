package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersRegistered  prometheus.Counter
	AccountsVerified prometheus.Counter
	CodesIssued      prometheus.Counter
	CodesRejected    prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lawclinic_users_registered_total",
			Help: "Total number of accounts created",
		}),
		AccountsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lawclinic_accounts_verified_total",
			Help: "Total number of accounts that completed OTP verification",
		}),
		CodesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lawclinic_otp_codes_issued_total",
			Help: "Total number of one-time codes issued (registration and resend)",
		}),
		CodesRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lawclinic_otp_codes_rejected_total",
			Help: "Total number of one-time code submissions rejected",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lawclinic_http_request_duration_ms",
			Help:    "Latency of HTTP requests in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
}
