// Package transport provides HTTP handlers for the verification domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prgi-labs/titlechain/internal/observability/metrics"
	"github.com/prgi-labs/titlechain/internal/validation"
	"github.com/prgi-labs/titlechain/internal/verification/domain"
)

// Service is the verification surface the handler needs.
type Service interface {
	Verify(ctx context.Context, pair domain.TitlePair) (*domain.Verdict, error)
}

// Handler handles HTTP requests for title verification.
type Handler struct {
	svc Service
}

// NewHandler creates a new verification HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers verification routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/verify", h.handleVerify)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	start := time.Now()
	verdict, err := h.svc.Verify(r.Context(), domain.TitlePair{
		EnglishTitle:  req.Title,
		RegionalTitle: req.HindiTitle,
	})
	elapsed := time.Since(start)

	if err != nil {
		var serverErr *domain.ServerError
		switch {
		case errors.Is(err, validation.ErrEmptyTitle):
			metrics.Verification("invalid", elapsed)
			writeError(w, http.StatusBadRequest, "EMPTY_TITLE", "Title must not be empty")
		case errors.Is(err, validation.ErrTitleTooLong):
			metrics.Verification("invalid", elapsed)
			writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds the maximum length of 200 characters")
		case errors.As(err, &serverErr):
			metrics.Verification("server_error", elapsed)
			writeError(w, http.StatusBadGateway, "ENGINE_ERROR", serverErr.Error())
		case errors.Is(err, domain.ErrServerUnreachable):
			metrics.Verification("unreachable", elapsed)
			writeError(w, http.StatusBadGateway, "ENGINE_UNREACHABLE", "Verification engine is unreachable")
		default:
			metrics.Verification("error", elapsed)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Verification failed")
		}
		return
	}

	if verdict.Approved {
		metrics.Verification("approved", elapsed)
	} else {
		metrics.Verification("rejected", elapsed)
	}
	writeJSON(w, http.StatusOK, verdict)
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
