package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OTPIssued counts issuance attempts by result (success|invalid|store_error|delivery_error).
	OTPIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otpdash_otp_issued_total",
			Help: "Total number of one-time code issuance attempts",
		},
		[]string{"result"},
	)

	// OTPVerifications counts verification attempts by result (success|invalid|rejected|error).
	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otpdash_otp_verifications_total",
			Help: "Total number of one-time code verification attempts",
		},
		[]string{"result"},
	)

	// MailDeliveries counts outbound mail by kind (otp|confirmation) and result.
	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otpdash_mail_deliveries_total",
			Help: "Total number of outbound email deliveries",
		},
		[]string{"kind", "result"},
	)

	// ActiveSessions tracks sessions created minus sessions revoked or purged.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "otpdash_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// CatalogFetches counts catalog snapshot loads by source (upstream|cache) and result.
	CatalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otpdash_catalog_fetches_total",
			Help: "Total number of catalog snapshot loads",
		},
		[]string{"source", "result"},
	)

	// CatalogFetchDuration measures upstream catalog request latency.
	CatalogFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "otpdash_catalog_fetch_duration_seconds",
			Help:    "Upstream catalog request latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "otpdash_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
