package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rentdesk/rentdesk/internal/repository"
)

// Service errors.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrLeaseNotFound        = errors.New("lease not found")
	ErrMaintenanceNotFound  = errors.New("maintenance request not found")
	ErrThreadNotFound       = errors.New("thread not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrEmailTaken           = errors.New("email already registered")
	ErrTenantEmailTaken     = errors.New("tenant email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountDisabled      = errors.New("account disabled")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrLeaseNotEditable     = errors.New("lease can no longer be edited")
	ErrLeaseNotDraft        = errors.New("only draft leases can be deleted")
	ErrPropertyOccupied     = errors.New("property already has an active lease")
	ErrPropertyHasLease     = errors.New("property has an active or pending lease")
	ErrTenantHasLease       = errors.New("tenant has an active or pending lease")
	ErrCannotModifySelf     = errors.New("admins cannot disable or demote themselves")
	ErrInvalidCursor        = errors.New("invalid cursor")
	ErrRecipientUnreachable = errors.New("recipient cannot be messaged")
)

// ValidationError reports per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validator accumulates field problems.
type validator struct {
	fields map[string]string
}

func (v *validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, exists := v.fields[field]; !exists {
		v.fields[field] = msg
	}
}

func (v *validator) check(ok bool, field, msg string) {
	if !ok {
		v.add(field, msg)
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// fieldError is a ValidationError with a single field.
func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// translate maps repository sentinels to service errors and wraps the rest.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrEmailExists):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrPropertyNotFound):
		return ErrPropertyNotFound
	case errors.Is(err, repository.ErrTenantNotFound):
		return ErrTenantNotFound
	case errors.Is(err, repository.ErrTenantEmailExists):
		return ErrTenantEmailTaken
	case errors.Is(err, repository.ErrLeaseNotFound):
		return ErrLeaseNotFound
	case errors.Is(err, repository.ErrMaintenanceNotFound):
		return ErrMaintenanceNotFound
	case errors.Is(err, repository.ErrThreadNotFound):
		return ErrThreadNotFound
	case errors.Is(err, repository.ErrPaymentNotFound):
		return ErrPaymentNotFound
	case errors.Is(err, repository.ErrNotificationNotFound):
		return ErrNotificationNotFound
	case errors.Is(err, repository.ErrInvalidCursor):
		return ErrInvalidCursor
	}
	if isServiceError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isServiceError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{
		ErrUserNotFound, ErrPropertyNotFound, ErrTenantNotFound, ErrLeaseNotFound,
		ErrMaintenanceNotFound, ErrThreadNotFound, ErrPaymentNotFound, ErrNotificationNotFound,
		ErrEmailTaken, ErrTenantEmailTaken, ErrInvalidCredentials, ErrAccountDisabled,
		ErrForbidden, ErrInvalidTransition, ErrLeaseNotEditable, ErrLeaseNotDraft, ErrPropertyOccupied,
		ErrPropertyHasLease, ErrTenantHasLease, ErrCannotModifySelf, ErrInvalidCursor,
		ErrRecipientUnreachable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
