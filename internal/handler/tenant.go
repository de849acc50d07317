package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// TenantHandler handles HTTP requests for tenant records.
type TenantHandler struct {
	svc    *service.TenantService
	logger *slog.Logger
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(svc *service.TenantService, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/tenants.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cursor, limit := page(r)
	result, err := h.svc.List(r.Context(), a, service.ListTenantsInput{
		Standing: model.TenantStanding(r.URL.Query().Get("status")),
		Cursor:   cursor,
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MapList(result.Items, result.NextCursor, dto.ToTenantResponse))
}

// Create handles POST /api/v1/tenants.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.TenantRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := h.svc.Create(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("tenant_created", "tenant_id", summary.Tenant.ID, "landlord_id", summary.Tenant.LandlordID)
	writeJSON(w, http.StatusCreated, dto.ToTenantResponse(summary))
}

// Get handles GET /api/v1/tenants/{id}.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTenantResponse(summary))
}

// Update handles PUT and PATCH /api/v1/tenants/{id}.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.TenantRequest
	if !decode(w, r, &req) {
		return
	}

	summary, err := h.svc.Update(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToTenantResponse(summary))
}

// Delete handles DELETE /api/v1/tenants/{id}.
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), a, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("tenant_deleted", "tenant_id", id)
	w.WriteHeader(http.StatusNoContent)
}
