// Package security provides request hardening middleware for the gateway.
package security

import "net/http"

// MaxBodySize returns middleware that caps the request body. Title payloads
// are a few hundred bytes at most, so the cap is expressed in kilobytes.
func MaxBodySize(maxKB int) func(http.Handler) http.Handler {
	maxBytes := int64(maxKB) * 1024

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
