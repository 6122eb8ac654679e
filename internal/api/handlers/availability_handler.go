package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// AvailabilityLister defines the interface for slot computation
type AvailabilityLister interface {
	GetAvailableSlots(ctx context.Context, professionalID string, serviceIDs []string, date time.Time, intervalMinutes int) ([]time.Time, error)
}

// AvailabilityHandler handles slot listing requests
type AvailabilityHandler struct {
	service AvailabilityLister
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityLister) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// GetAvailability handles GET /api/professionals/{id}/availability
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	professionalID := r.PathValue("id")
	if professionalID == "" {
		respondWithError(w, http.StatusBadRequest, "professional ID is required")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		respondWithError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid date format (use YYYY-MM-DD)")
		return
	}

	servicesParam := r.URL.Query().Get("services")
	if servicesParam == "" {
		respondWithError(w, http.StatusBadRequest, "services query parameter is required")
		return
	}
	serviceIDs := strings.Split(servicesParam, ",")

	intervalMinutes := 0
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		intervalMinutes, err = strconv.Atoi(intervalStr)
		if err != nil || intervalMinutes < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid interval")
			return
		}
	}

	slots, err := h.service.GetAvailableSlots(r.Context(), professionalID, serviceIDs, date, intervalMinutes)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	formatted := make([]string, 0, len(slots))
	for _, slot := range slots {
		formatted = append(formatted, slot.Format(time.RFC3339))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"professional_id": professionalID,
		"date":            dateStr,
		"slots":           formatted,
	})
}
