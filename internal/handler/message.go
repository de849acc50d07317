package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/service"
)

// MessageHandler handles HTTP requests for message threads.
type MessageHandler struct {
	svc    *service.MessageService
	logger *slog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(svc *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{svc: svc, logger: logger}
}

// ListThreads handles GET /api/v1/messages/threads.
func (h *MessageHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	cursor, limit := page(r)
	result, err := h.svc.ListThreads(r.Context(), a, cursor, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MapList(result.Items, result.NextCursor, dto.ToThreadSummaryResponse))
}

// CreateThread handles POST /api/v1/messages/threads.
func (h *MessageHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.CreateThreadRequest
	if !decode(w, r, &req) {
		return
	}

	detail, err := h.svc.CreateThread(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("thread_created",
		"thread_id", detail.Thread.ID,
		"participants", len(detail.Thread.ParticipantIDs),
	)
	writeJSON(w, http.StatusCreated, dto.ToThreadDetailResponse(detail))
}

// GetThread handles GET /api/v1/messages/threads/{id}.
func (h *MessageHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.GetThread(r.Context(), a, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToThreadDetailResponse(detail))
}

// PostMessage handles POST /api/v1/messages/threads/{id}/messages.
func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.PostMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.svc.PostMessage(r.Context(), a, chi.URLParam(r, "id"), req.Body)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// MarkRead handles POST /api/v1/messages/threads/{id}/read.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(r.Context(), a, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnreadCount handles GET /api/v1/messages/unread-count.
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UnreadCountResponse{UnreadCount: n})
}
