package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// LeaseHandler handles HTTP requests for leases and their lifecycle.
type LeaseHandler struct {
	svc    *service.LeaseService
	logger *slog.Logger
}

// NewLeaseHandler creates a new LeaseHandler.
func NewLeaseHandler(svc *service.LeaseService, logger *slog.Logger) *LeaseHandler {
	return &LeaseHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/leases.
// status accepts a comma-separated list.
func (h *LeaseHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	cursor, limit := page(r)

	input := service.ListLeasesInput{
		PropertyID: query.Get("property_id"),
		TenantID:   query.Get("tenant_id"),
		Cursor:     cursor,
		Limit:      limit,
	}
	if s := query.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				input.Statuses = append(input.Statuses, model.LeaseStatus(part))
			}
		}
	}
	if d := query.Get("expiring_within_days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil {
			writeValidationError(w, map[string]string{"expiring_within_days": "must be an integer"})
			return
		}
		input.ExpiringWithinDays = &days
	}

	result, err := h.svc.List(r.Context(), a, input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}

// Create handles POST /api/v1/leases.
func (h *LeaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.CreateLeaseRequest
	if !decode(w, r, &req) {
		return
	}

	lease, err := h.svc.Create(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("lease_created",
		"lease_id", lease.ID,
		"property_id", lease.PropertyID,
		"status", lease.Status,
	)
	writeJSON(w, http.StatusCreated, lease)
}

// Get handles GET /api/v1/leases/{id}.
func (h *LeaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	lease, err := h.svc.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lease)
}

// Update handles PATCH /api/v1/leases/{id}.
func (h *LeaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.UpdateLeaseRequest
	if !decode(w, r, &req) {
		return
	}
	lease, err := h.svc.Update(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lease)
}

// Activate handles POST /api/v1/leases/{id}/activate.
func (h *LeaseHandler) Activate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	lease, err := h.svc.Activate(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("lease_activated", "lease_id", lease.ID)
	writeJSON(w, http.StatusOK, lease)
}

// Renew handles POST /api/v1/leases/{id}/renew.
func (h *LeaseHandler) Renew(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.RenewLeaseRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Renew(r.Context(), a, chi.URLParam(r, "id"), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("lease_renewed",
		"lease_id", res.Previous.ID,
		"renewed_to_id", res.Lease.ID,
		"rent_cents", res.Lease.RentCents,
	)
	writeJSON(w, http.StatusCreated, dto.RenewLeaseResponse{Previous: res.Previous, Lease: res.Lease})
}

// Terminate handles POST /api/v1/leases/{id}/terminate.
func (h *LeaseHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.TerminateLeaseRequest
	if !decode(w, r, &req) {
		return
	}

	lease, err := h.svc.Terminate(r.Context(), a, chi.URLParam(r, "id"), service.TerminateLeaseInput{
		Reason:        req.Reason,
		EffectiveDate: req.EffectiveDate,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("lease_terminated", "lease_id", lease.ID)
	writeJSON(w, http.StatusOK, lease)
}

// Delete handles DELETE /api/v1/leases/{id}.
func (h *LeaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), a, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("lease_deleted", "lease_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Balance handles GET /api/v1/leases/{id}/balance.
func (h *LeaseHandler) Balance(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	balance, err := h.svc.Balance(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}
