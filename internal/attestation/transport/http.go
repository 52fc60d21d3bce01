// Package transport provides HTTP handlers for the attestation domain.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/observability/metrics"
	"github.com/prgi-labs/titlechain/internal/orchestrator"
)

// Service is the attestation surface the handler needs. Registration takes
// no parameters: it always attests the current session's approved verdict.
type Service interface {
	Register(ctx context.Context) (*domain.Record, error)
}

// Handler handles HTTP requests for on-chain attestation.
type Handler struct {
	svc Service
}

// NewHandler creates a new attestation HTTP handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers attestation routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/attestations", h.handleRegister)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Register(r.Context())
	if err != nil {
		metrics.AttestationSubmit("rejected")
		switch {
		case errors.Is(err, orchestrator.ErrNoApprovedVerdict):
			writeError(w, http.StatusConflict, "NO_APPROVED_VERDICT", "Verify a title and obtain approval before registering")
		case errors.Is(err, orchestrator.ErrAttestationInFlight):
			writeError(w, http.StatusConflict, "ATTESTATION_IN_FLIGHT", "A registration is already awaiting confirmation")
		case errors.Is(err, domain.ErrWalletRequired):
			writeError(w, http.StatusBadRequest, "WALLET_REQUIRED", "Connect a wallet before registering")
		case errors.Is(err, domain.ErrWrongNetwork):
			writeError(w, http.StatusBadRequest, "WRONG_NETWORK", err.Error())
		case rec != nil:
			// Submission was attempted and failed; the record carries the
			// reason and is already journaled.
			writeJSON(w, http.StatusBadGateway, rec)
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		}
		return
	}

	metrics.AttestationSubmit("submitted")
	metrics.AttestationConfirm(string(rec.Status))
	writeJSON(w, http.StatusOK, rec)
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
