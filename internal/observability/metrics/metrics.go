// Package metrics provides Prometheus instrumentation for titlechain.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	enabled bool

	// HTTP metrics
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	// Verification domain metrics
	verificationTotal    *prometheus.CounterVec
	verificationDuration prometheus.Histogram

	// Attestation domain metrics
	attestationSubmitTotal  *prometheus.CounterVec
	attestationConfirmTotal *prometheus.CounterVec

	// Lookup domain metrics
	lookupTotal *prometheus.CounterVec
)

// Init initializes the metrics system.
func Init(enabledFlag bool) {
	enabled = enabledFlag

	if !enabled {
		return
	}

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	verificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "title_verification_total",
			Help: "Total number of title verification round trips",
		},
		[]string{"result"},
	)

	verificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "title_verification_duration_seconds",
			Help:    "Verification engine round-trip latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	attestationSubmitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attestation_submit_total",
			Help: "Total number of attestation transactions submitted",
		},
		[]string{"status"},
	)

	attestationConfirmTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attestation_confirm_total",
			Help: "Total number of attestation confirmation outcomes",
		},
		[]string{"status"},
	)

	lookupTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hash_lookup_total",
			Help: "Total number of public hash lookups",
		},
		[]string{"result"},
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	if !enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.Handler()
}

// Enabled returns whether metrics are enabled.
func Enabled() bool {
	return enabled
}
