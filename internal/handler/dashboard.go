package handler

import (
	"log/slog"
	"net/http"

	"github.com/rentdesk/rentdesk/internal/service"
)

// DashboardHandler serves the role-specific dashboard.
type DashboardHandler struct {
	svc    *service.DashboardService
	logger *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc *service.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get handles GET /api/v1/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Get(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	writeJSON(w, http.StatusOK, d)
}
