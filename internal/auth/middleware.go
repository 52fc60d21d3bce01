package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware returns an HTTP middleware that requires the configured gateway
// token. With an empty token the middleware is a no-op and the routes stay
// open, which is the default for a gateway bound to localhost.
func Middleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-API-Key")
			if presented == "" {
				auth := r.Header.Get("Authorization")
				if len(auth) > 7 && auth[:7] == "Bearer " {
					presented = auth[7:]
				}
			}

			if presented == "" {
				writeUnauthorized(w, "access token required")
				return
			}
			if !Matches(token, presented) {
				writeUnauthorized(w, "invalid access token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}
