package handlers

import (
	"net/http"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/middleware"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/services"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
)

// ActivityHandler handles activity log endpoints
type ActivityHandler struct {
	logger  *logger.Logger
	service *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(log *logger.Logger, service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{logger: log, service: service}
}

// List handles GET /activity
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	logs, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}
