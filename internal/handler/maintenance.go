package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// MaintenanceHandler handles HTTP requests for maintenance requests.
type MaintenanceHandler struct {
	svc    *service.MaintenanceService
	logger *slog.Logger
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(svc *service.MaintenanceService, logger *slog.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/maintenance/requests.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	cursor, limit := page(r)

	result, err := h.svc.List(r.Context(), a, service.ListMaintenanceInput{
		Status:     model.MaintenanceStatus(query.Get("status")),
		Priority:   model.MaintenancePriority(query.Get("priority")),
		PropertyID: query.Get("property_id"),
		Cursor:     cursor,
		Limit:      limit,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}

// Create handles POST /api/v1/maintenance/requests.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.CreateMaintenanceRequest
	if !decode(w, r, &req) {
		return
	}

	mr, err := h.svc.Create(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("maintenance_request_created",
		"request_id", mr.ID,
		"property_id", mr.PropertyID,
		"priority", mr.Priority,
	)
	writeJSON(w, http.StatusCreated, mr)
}

// Get handles GET /api/v1/maintenance/requests/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	mr, err := h.svc.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mr)
}

// Update handles PATCH /api/v1/maintenance/requests/{id}.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.UpdateMaintenanceRequest
	if !decode(w, r, &req) {
		return
	}
	mr, err := h.svc.Update(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, mr)
}

// UpdateStatus handles POST /api/v1/maintenance/requests/{id}/status.
func (h *MaintenanceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.MaintenanceStatusRequest
	if !decode(w, r, &req) {
		return
	}

	mr, err := h.svc.UpdateStatus(r.Context(), a, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("maintenance_status_changed", "request_id", mr.ID, "status", mr.Status)
	writeJSON(w, http.StatusOK, mr)
}
