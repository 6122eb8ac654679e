package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/olatide/bookingscheduler/backend/internal/api/middleware"
	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/repositories"
)

// ProfessionalHandler manages a tenant's professionals. Availability edits
// never touch existing appointments; bookings made under an older schedule
// stay valid.
type ProfessionalHandler struct {
	repo repositories.ProfessionalRepository
}

// NewProfessionalHandler creates a new professional handler
func NewProfessionalHandler(repo repositories.ProfessionalRepository) *ProfessionalHandler {
	return &ProfessionalHandler{repo: repo}
}

// GetProfessional handles GET /api/professionals/{id}
func (h *ProfessionalHandler) GetProfessional(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "professional ID is required")
		return
	}

	professional, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || !identity.CanAccessTenant(professional.TenantID) {
		respondWithError(w, http.StatusForbidden, "access to this tenant is not allowed")
		return
	}

	respondWithJSON(w, http.StatusOK, professional)
}

// SetAvailability handles PUT /api/professionals/{id}/availability
func (h *ProfessionalHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "professional ID is required")
		return
	}

	var availability entities.WeeklyAvailability
	if err := json.NewDecoder(r.Body).Decode(&availability); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if !h.authorizeStaff(w, r, id) {
		return
	}

	if err := h.repo.SetAvailability(r.Context(), id, availability); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeactivateProfessional handles DELETE /api/professionals/{id}
func (h *ProfessionalHandler) DeactivateProfessional(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "professional ID is required")
		return
	}

	if !h.authorizeStaff(w, r, id) {
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// authorizeStaff requires a staff identity on the professional's tenant.
func (h *ProfessionalHandler) authorizeStaff(w http.ResponseWriter, r *http.Request, professionalID string) bool {
	professional, err := h.repo.GetByID(r.Context(), professionalID)
	if err != nil {
		respondWithServiceError(w, err)
		return false
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || identity.Kind != entities.IdentityKindStaff || !identity.CanAccessTenant(professional.TenantID) {
		respondWithError(w, http.StatusForbidden, "staff access to this tenant is required")
		return false
	}
	return true
}
