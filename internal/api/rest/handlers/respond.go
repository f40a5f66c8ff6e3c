package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
)

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps domain errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrBudgetExceeded):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrDuplicateSchedule):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrRunInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrScheduleInactive):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrGenerationFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, models.ErrPublishFailed):
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
