// Package metrics declares the server's Prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	AuthVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verifications_total",
			Help: "Total number of OTP verification attempts.",
		},
		[]string{"result"},
	)

	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of session tokens issued.",
		},
	)

	NotifyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_failures_total",
			Help: "OTP notifications that could not be delivered.",
		},
	)

	PendingSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pending_registrations_swept_total",
			Help: "Expired pending registrations removed by the sweeper.",
		},
	)

	ImagesUploadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "images_uploaded_total",
			Help: "Total number of image uploads.",
		},
		[]string{"result"},
	)
)

// MustRegister registers every collector with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthVerificationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		NotifyFailuresTotal,
		PendingSweptTotal,
		ImagesUploadedTotal,
	)
}

// Result labels shared by the counters above.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
