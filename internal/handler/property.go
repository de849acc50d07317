package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// PropertyHandler handles HTTP requests for properties.
type PropertyHandler struct {
	svc    *service.PropertyService
	logger *slog.Logger
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(svc *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	cursor, limit := page(r)

	result, err := h.svc.List(r.Context(), a, service.ListPropertiesInput{
		Status: model.PropertyStatus(query.Get("status")),
		City:   query.Get("city"),
		Query:  query.Get("q"),
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}

// Create handles POST /api/v1/properties.
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.PropertyRequest
	if !decode(w, r, &req) {
		return
	}

	property, err := h.svc.Create(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("property_created", "property_id", property.ID, "landlord_id", property.LandlordID)
	writeJSON(w, http.StatusCreated, property)
}

// Get handles GET /api/v1/properties/{id}.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	property, err := h.svc.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// Update handles PUT and PATCH /api/v1/properties/{id}.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.PropertyRequest
	if !decode(w, r, &req) {
		return
	}

	property, err := h.svc.Update(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("property_updated", "property_id", property.ID)
	writeJSON(w, http.StatusOK, property)
}

// Delete handles DELETE /api/v1/properties/{id}.
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), a, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("property_deleted", "property_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Leases handles GET /api/v1/properties/{id}/leases.
func (h *PropertyHandler) Leases(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cursor, limit := page(r)
	result, err := h.svc.Leases(r.Context(), a, chi.URLParam(r, "id"), cursor, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}
