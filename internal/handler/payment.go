package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// PaymentHandler handles HTTP requests for rent payments.
type PaymentHandler struct {
	svc    *service.PaymentService
	logger *slog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	cursor, limit := page(r)
	result, err := h.svc.List(r.Context(), a, service.ListPaymentsInput{
		LeaseID: query.Get("lease_id"),
		Status:  model.PaymentStatus(query.Get("status")),
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewList(result.Items, result.NextCursor))
}

// Record handles POST /api/v1/payments.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.svc.Record(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("payment_recorded",
		"payment_id", p.ID,
		"lease_id", p.LeaseID,
		"amount_cents", p.AmountCents,
		"status", p.Status,
	)
	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /api/v1/payments/{id}.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateStatus handles POST /api/v1/payments/{id}/status.
func (h *PaymentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.PaymentStatusRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateStatus(r.Context(), a, chi.URLParam(r, "id"), req.Status, req.Notes)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("payment_status_changed", "payment_id", p.ID, "status", p.Status)
	writeJSON(w, http.StatusOK, p)
}
