package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/service"
)

// AdminHandler provides admin-only account management endpoints.
type AdminHandler struct {
	svc    *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cursor, limit := page(r)
	result, err := h.svc.ListUsers(r.Context(), a, r.URL.Query().Get("role"), cursor, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}

// UpdateUser handles PATCH /api/v1/admin/users/{id}.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("admin_user_updated",
		"admin_id", a.UserID,
		"user_id", user.ID,
		"role", user.Role,
		"disabled", user.Disabled,
	)
	writeJSON(w, http.StatusOK, user)
}
