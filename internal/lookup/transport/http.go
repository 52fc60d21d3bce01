// Package transport provides HTTP handlers for the public lookup domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/observability/metrics"
	"github.com/prgi-labs/titlechain/internal/validation"
)

// Service is the lookup surface the handler needs.
type Service interface {
	Lookup(ctx context.Context, hashText string) (*domain.Result, error)
}

// Handler handles HTTP requests for public hash lookup.
type Handler struct {
	svc Service
}

// NewHandler creates a new lookup HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers lookup routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/lookup/{hash}", h.handleLookup)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	hashText := chi.URLParam(r, "hash")

	result, err := h.svc.Lookup(r.Context(), hashText)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidHashFormat):
			metrics.Lookup("invalid")
			writeError(w, http.StatusBadRequest, "INVALID_HASH", "Hash must be 0x followed by 64 hex characters")
		case errors.Is(err, domain.ErrLookupFailed):
			metrics.Lookup("error")
			writeError(w, http.StatusBadGateway, "LOOKUP_FAILED", "Blockchain query failed")
		default:
			metrics.Lookup("error")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Lookup failed")
		}
		return
	}

	if result.IsRegistered {
		metrics.Lookup("registered")
	} else {
		metrics.Lookup("not_registered")
	}
	writeJSON(w, http.StatusOK, result)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
