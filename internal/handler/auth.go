package handler

import (
	"log/slog"
	"net/http"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/service"
)

// AuthHandler handles registration, login and the caller's own profile.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLoginResponse(res))
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	if err := h.svc.Logout(r.Context(), a); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Me(r.Context(), a)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), a, req.ToInput())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangePassword handles POST /api/v1/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.svc.ChangePassword(r.Context(), a, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.logger.Info("password_changed", "user_id", a.UserID)
	w.WriteHeader(http.StatusNoContent)
}
