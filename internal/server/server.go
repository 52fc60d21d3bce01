// Package server provides the gateway HTTP server setup and wiring.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	attestationTransport "github.com/prgi-labs/titlechain/internal/attestation/transport"
	"github.com/prgi-labs/titlechain/internal/auth"
	"github.com/prgi-labs/titlechain/internal/config"
	lookupTransport "github.com/prgi-labs/titlechain/internal/lookup/transport"
	"github.com/prgi-labs/titlechain/internal/middleware/logging"
	"github.com/prgi-labs/titlechain/internal/middleware/ratelimit"
	"github.com/prgi-labs/titlechain/internal/middleware/realip"
	"github.com/prgi-labs/titlechain/internal/middleware/security"
	"github.com/prgi-labs/titlechain/internal/observability/metrics"
	"github.com/prgi-labs/titlechain/internal/orchestrator"
	verificationTransport "github.com/prgi-labs/titlechain/internal/verification/transport"
)

// maxBodyKB caps request bodies; title payloads are tiny.
const maxBodyKB = 64

// Server is the gateway HTTP server.
type Server struct {
	cfg    *config.Config
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
	router *chi.Mux
}

// New creates a new gateway server around an orchestrator.
func New(cfg *config.Config, orch *orchestrator.Orchestrator, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		orch:   orch,
		logger: logger,
		router: chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	// Order matters: the client IP must be resolved before rate limiting
	// and logging can use it.
	s.router.Use(realip.Middleware(s.cfg.Server.TrustProxy, s.cfg.Server.TrustedProxies))
	s.router.Use(security.MaxBodySize(maxBodyKB))
	s.router.Use(ratelimit.Middleware(ratelimit.Config{
		Enabled:       s.cfg.RateLimit.Enabled,
		MaxRequests:   s.cfg.RateLimit.MaxRequests,
		WindowSeconds: s.cfg.RateLimit.WindowSeconds,
	}))

	s.router.Use(middleware.RequestID)
	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// CORS: the gateway is a local companion to browser tooling.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/metrics", metrics.Handler().ServeHTTP)

	verificationHandler := verificationTransport.NewHandler(s.orch)
	attestationHandler := attestationTransport.NewHandler(s.orch)
	lookupHandler := lookupTransport.NewHandler(s.orch)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Mutating routes drive the wallet session; lookup and history
		// stay public.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.cfg.Server.APIKey))
			verificationHandler.RegisterRoutes(r)
			attestationHandler.RegisterRoutes(r)
		})
		lookupHandler.RegisterRoutes(r)
		r.Get("/history", s.handleHistory)
	})
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHistory serves this session's journaled verdicts and attestations.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	verdicts, records, err := s.orch.History(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read session history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"verdicts":     verdicts,
		"attestations": records,
	})
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
