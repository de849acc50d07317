package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/service"
)

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message},
	})
}

// writeValidationError writes a 422 listing the offending fields.
func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error: dto.ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "Request validation failed",
			Fields:  fields,
		},
	})
}

// writeUnauthorized tells the client to drop its token and sign in again.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rentdesk"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
}

// writeDecodeError reports a body that could not be decoded or validated.
func writeDecodeError(w http.ResponseWriter, err error) {
	var fields dto.FieldErrors
	if errors.As(err, &fields) {
		writeValidationError(w, fields)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{service.ErrPropertyNotFound, http.StatusNotFound, "PROPERTY_NOT_FOUND", "Property not found"},
	{service.ErrTenantNotFound, http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant not found"},
	{service.ErrLeaseNotFound, http.StatusNotFound, "LEASE_NOT_FOUND", "Lease not found"},
	{service.ErrMaintenanceNotFound, http.StatusNotFound, "MAINTENANCE_REQUEST_NOT_FOUND", "Maintenance request not found"},
	{service.ErrThreadNotFound, http.StatusNotFound, "THREAD_NOT_FOUND", "Thread not found"},
	{service.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND", "Payment not found"},
	{service.ErrNotificationNotFound, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found"},

	{service.ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered"},
	{service.ErrTenantEmailTaken, http.StatusConflict, "TENANT_EMAIL_TAKEN", "A tenant with this email already exists"},
	{service.ErrInvalidTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Status transition is not allowed"},
	{service.ErrLeaseNotEditable, http.StatusConflict, "LEASE_NOT_EDITABLE", "Only draft or pending leases can be edited"},
	{service.ErrLeaseNotDraft, http.StatusConflict, "LEASE_NOT_DRAFT", "Only draft leases can be deleted"},
	{service.ErrPropertyOccupied, http.StatusConflict, "PROPERTY_OCCUPIED", "Property already has an active lease"},
	{service.ErrPropertyHasLease, http.StatusConflict, "PROPERTY_HAS_ACTIVE_LEASE", "Property has an active or pending lease"},
	{service.ErrTenantHasLease, http.StatusConflict, "TENANT_HAS_LEASE", "Tenant has an active or pending lease"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"},
	{service.ErrAccountDisabled, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource"},
	{service.ErrCannotModifySelf, http.StatusForbidden, "CANNOT_MODIFY_SELF", "Admins cannot disable or demote themselves"},
	{service.ErrRecipientUnreachable, http.StatusForbidden, "RECIPIENT_UNREACHABLE", "Recipient cannot be messaged"},
	{service.ErrInvalidCursor, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor"},
}

// writeServiceError maps service errors to HTTP responses.
// Anything unrecognised is logged and answered with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, verr.Fields)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.code, m.message)
			return
		}
	}
	if logger != nil {
		logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}
