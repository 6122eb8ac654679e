package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/olatide/bookingscheduler/backend/internal/api/middleware"
	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// BillingTrigger defines the interface for starting billing runs
type BillingTrigger interface {
	Run(ctx context.Context, identity entities.Identity, req providers.BillingRunRequest) (string, error)
}

// BillingHandler handles administrative billing requests
type BillingHandler struct {
	service BillingTrigger
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(service BillingTrigger) *BillingHandler {
	return &BillingHandler{service: service}
}

// StartRun handles POST /api/admin/billing/runs
func (h *BillingHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req providers.BillingRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	runID, err := h.service.Run(r.Context(), identity, req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}
