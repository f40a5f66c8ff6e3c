package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/middleware"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/services"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/validator"
)

// AutoScheduleHandler handles auto schedule endpoints
type AutoScheduleHandler struct {
	logger  *logger.Logger
	service *services.AutoScheduleService
}

// NewAutoScheduleHandler creates a new auto schedule handler
func NewAutoScheduleHandler(log *logger.Logger, service *services.AutoScheduleService) *AutoScheduleHandler {
	return &AutoScheduleHandler{logger: log, service: service}
}

// Create handles POST /schedules
func (h *AutoScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req models.CreateAutoScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, schedule)
}

// List handles GET /schedules
func (h *AutoScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var siteID *uuid.UUID
	if raw := r.URL.Query().Get("site_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid site_id")
			return
		}
		siteID = &id
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	resp, err := h.service.List(r.Context(), userID, siteID, page, pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get handles GET /schedules/{id}
func (h *AutoScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	schedule, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, schedule)
}

// Update handles PUT /schedules/{id}
func (h *AutoScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	var req models.UpdateAutoScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Validate(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, schedule)
}

// Delete handles DELETE /schedules/{id}
func (h *AutoScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Pause handles POST /schedules/{id}/pause
func (h *AutoScheduleHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

// Resume handles POST /schedules/{id}/resume
func (h *AutoScheduleHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// RunNow handles POST /schedules/{id}/run
func (h *AutoScheduleHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	result, err := h.service.RunNow(r.Context(), userID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *AutoScheduleHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, id, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.SetActive(r.Context(), userID, id, active); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *AutoScheduleHandler) ownerAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, id, true
}
