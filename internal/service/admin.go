package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// AdminService manages user accounts.
type AdminService struct {
	core
	tokens   TokenRevoker
	tokenTTL time.Duration
}

func newAdminService(c core, tokens TokenRevoker, issuer *auth.TokenIssuer) *AdminService {
	s := &AdminService{core: c, tokens: tokens, tokenTTL: 24 * time.Hour}
	if issuer != nil {
		s.tokenTTL = issuer.TTL()
	}
	return s
}

// UpdateUserInput carries the admin-editable account fields.
type UpdateUserInput struct {
	Role     *string
	Disabled *bool
}

// ListUsers returns accounts, optionally filtered by role.
func (s *AdminService) ListUsers(ctx context.Context, actor *model.AuthContext, role, cursor string, limit int) (*Page[*model.User], error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if role != "" && !model.IsValidRole(role) {
		return nil, fieldError("role", "is not a valid role")
	}

	items, next, err := s.store.ListUsers(ctx, repository.UserFilter{Role: role}, cursor, clampLimit(limit))
	if err != nil {
		return nil, translate(err, "list users")
	}
	return &Page[*model.User]{Items: items, NextCursor: next}, nil
}

// UpdateUser changes an account's role or disabled flag. Admins cannot
// disable or demote themselves.
func (s *AdminService) UpdateUser(ctx context.Context, actor *model.AuthContext, id string, input UpdateUserInput) (*model.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if input.Role != nil && !model.IsValidRole(*input.Role) {
		return nil, fieldError("role", "is not a valid role")
	}
	if id == actor.UserID {
		if (input.Disabled != nil && *input.Disabled) || (input.Role != nil && *input.Role != model.RoleAdmin) {
			return nil, ErrCannotModifySelf
		}
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, translate(err, "get user")
	}
	roleChanged := input.Role != nil && *input.Role != user.Role
	disabled := input.Disabled != nil && *input.Disabled && !user.Disabled
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Disabled != nil {
		user.Disabled = *input.Disabled
	}
	user.UpdatedAt = s.nowUTC()

	// A role change or disable ends every session issued so far.
	if (roleChanged || disabled) && s.tokens != nil {
		if err := s.tokens.RevokeUserTokens(ctx, user.ID, user.UpdatedAt, s.tokenTTL); err != nil {
			return nil, fmt.Errorf("revoke user tokens: %w", err)
		}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, translate(err, "update user")
	}
	s.logger.Info("user updated by admin", "user_id", user.ID, "admin_id", actor.UserID, "role", user.Role, "disabled", user.Disabled)
	s.invalidate(ctx, user.ID)
	return user, nil
}

// BootstrapAdmin creates an admin account, or promotes and re-enables an
// existing account with the same email. The password is only set on create.
func (s *AdminService) BootstrapAdmin(ctx context.Context, hasher *auth.Hasher, email, password string) (*model.User, bool, error) {
	email = model.NormalizeEmail(email)
	if !isEmail(email) {
		return nil, false, fieldError("email", "must be a valid email address")
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		existing.Role = model.RoleAdmin
		existing.Disabled = false
		existing.UpdatedAt = s.nowUTC()
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return nil, false, translate(err, "promote user")
		}
		return existing, false, nil
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, false, translate(err, "get user")
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, false, fieldError("password", fmt.Sprintf("must be %d to %d characters", auth.MinPasswordLength, auth.MaxPasswordLength))
	}
	if hasher == nil {
		hasher = auth.NewHasher(auth.Params{})
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowUTC()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		LastName:     strings.SplitN(email, "@", 2)[0],
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, false, translate(err, "create admin")
	}
	return user, true, nil
}
