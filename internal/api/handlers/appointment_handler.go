package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/olatide/bookingscheduler/backend/internal/api/middleware"
	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
)

// AppointmentBooker defines the interface for appointment lifecycle operations
type AppointmentBooker interface {
	Create(ctx context.Context, input services.CreateAppointmentInput) (*entities.Appointment, error)
	UpdateSchedule(ctx context.Context, id string, startAt time.Time, serviceIDs []string) (*entities.Appointment, error)
	SetStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error)
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)
}

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service AppointmentBooker
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service AppointmentBooker) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type bookAppointmentRequest struct {
	TenantID       string    `json:"tenant_id"`
	ClientID       string    `json:"client_id"`
	ProfessionalID string    `json:"professional_id"`
	ServiceIDs     []string  `json:"service_ids"`
	StartAt        time.Time `json:"start_at"`
	Notes          string    `json:"notes"`
}

// BookAppointment handles POST /api/appointments
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.TenantID == "" || req.ClientID == "" || req.ProfessionalID == "" {
		respondWithError(w, http.StatusBadRequest, "tenant_id, client_id and professional_id are required")
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || !identity.CanAccessTenant(req.TenantID) {
		respondWithError(w, http.StatusForbidden, "access to this tenant is not allowed")
		return
	}

	appointment, err := h.service.Create(r.Context(), services.CreateAppointmentInput{
		TenantID:       req.TenantID,
		ClientID:       req.ClientID,
		ProfessionalID: req.ProfessionalID,
		ServiceIDs:     req.ServiceIDs,
		StartAt:        req.StartAt,
		Notes:          req.Notes,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// GetAppointment handles GET /api/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	appointment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || !identity.CanAccessTenant(appointment.TenantID) {
		respondWithError(w, http.StatusForbidden, "access to this tenant is not allowed")
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

type rescheduleRequest struct {
	StartAt    time.Time `json:"start_at"`
	ServiceIDs []string  `json:"service_ids,omitempty"`
}

// RescheduleAppointment handles PATCH /api/appointments/{id}/schedule
func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.StartAt.IsZero() {
		respondWithError(w, http.StatusBadRequest, "start_at is required")
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	appointment, err := h.service.UpdateSchedule(r.Context(), id, req.StartAt, req.ServiceIDs)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

type statusRequest struct {
	Status entities.AppointmentStatus `json:"status"`
}

// SetAppointmentStatus handles PATCH /api/appointments/{id}/status
func (h *AppointmentHandler) SetAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if !h.authorize(w, r, id) {
		return
	}

	appointment, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// authorize checks the caller's identity against the appointment's tenant.
// Writes the error response and returns false on rejection.
func (h *AppointmentHandler) authorize(w http.ResponseWriter, r *http.Request, appointmentID string) bool {
	appointment, err := h.service.GetByID(r.Context(), appointmentID)
	if err != nil {
		respondWithServiceError(w, err)
		return false
	}

	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok || !identity.CanAccessTenant(appointment.TenantID) {
		respondWithError(w, http.StatusForbidden, "access to this tenant is not allowed")
		return false
	}
	return true
}
