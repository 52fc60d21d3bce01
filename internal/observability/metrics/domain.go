// Package metrics provides Prometheus instrumentation for titlechain.
package metrics

import "time"

// Verification records one verification round trip. result is one of
// "approved", "rejected", "server_error" or "unreachable".
func Verification(result string, elapsed time.Duration) {
	if !enabled {
		return
	}
	verificationTotal.WithLabelValues(result).Inc()
	verificationDuration.Observe(elapsed.Seconds())
}

// AttestationSubmit records a transaction submission attempt.
func AttestationSubmit(status string) {
	if !enabled {
		return
	}
	attestationSubmitTotal.WithLabelValues(status).Inc()
}

// AttestationConfirm records a confirmation outcome.
func AttestationConfirm(status string) {
	if !enabled {
		return
	}
	attestationConfirmTotal.WithLabelValues(status).Inc()
}

// Lookup records a public hash lookup. result is "registered",
// "not_registered" or "error".
func Lookup(result string) {
	if !enabled {
		return
	}
	lookupTotal.WithLabelValues(result).Inc()
}
