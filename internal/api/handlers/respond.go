package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/olatide/bookingscheduler/backend/internal/application/services"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
)

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithServiceError maps the error taxonomy onto HTTP statuses.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var transition *services.InvalidTransitionError
	if errors.As(err, &transition) {
		respondWithError(w, http.StatusConflict, transition.Error())
		return
	}
	var missing *services.MissingDependencyError
	if errors.As(err, &missing) {
		respondWithError(w, http.StatusUnprocessableEntity, missing.Error())
		return
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		respondWithError(w, appErr.HTTPStatus(), appErr.Message)
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
