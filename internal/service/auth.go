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

// DefaultLoginMinDuration is the floor on failed login latency.
const DefaultLoginMinDuration = 400 * time.Millisecond

// AuthService handles registration, login and the caller's own account.
type AuthService struct {
	core
	issuer   *auth.TokenIssuer
	hasher   *auth.Hasher
	tokens   TokenRevoker
	minDelay time.Duration
	sleep    func(ctx context.Context, d time.Duration)
}

func newAuthService(c core, issuer *auth.TokenIssuer, hasher *auth.Hasher, tokens TokenRevoker, minDelay time.Duration) *AuthService {
	if hasher == nil {
		hasher = auth.NewHasher(auth.Params{})
	}
	if minDelay <= 0 {
		minDelay = DefaultLoginMinDuration
	}
	return &AuthService{
		core:     c,
		issuer:   issuer,
		hasher:   hasher,
		tokens:   tokens,
		minDelay: minDelay,
		sleep:    sleepContext,
	}
}

// RegisterInput defines input for self sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	User      *model.User
}

// Register creates a landlord or tenant account. A new tenant account is
// linked to the tenant records landlords already keep under its email.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := model.NormalizeEmail(input.Email)

	var v validator
	v.check(isEmail(email), "email", "must be a valid email address")
	if err := auth.ValidatePassword(input.Password); err != nil {
		v.add("password", fmt.Sprintf("must be %d to %d characters", auth.MinPasswordLength, auth.MaxPasswordLength))
	}
	v.check(strings.TrimSpace(input.FirstName) != "", "first_name", "is required")
	v.check(strings.TrimSpace(input.LastName) != "", "last_name", "is required")
	v.check(input.Role == model.RoleLandlord || input.Role == model.RoleTenant, "role", "must be landlord or tenant")
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.nowUTC()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if user.Role != model.RoleTenant {
			return nil
		}
		linked, err := tx.LinkTenantsToUser(ctx, email, user.ID)
		if err != nil {
			return err
		}
		if linked > 0 {
			s.logger.Info("linked tenant records to new account", "user_id", user.ID, "records", linked)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "register user")
	}

	return user, nil
}

// Login verifies credentials and issues an access token. Every failure
// takes at least the configured minimum duration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()
	fail := func(outcome string, err error) (*LoginResult, error) {
		s.metrics.IncLogin(outcome)
		if wait := s.minDelay - time.Since(start); wait > 0 {
			s.sleep(ctx, wait)
		}
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return fail("invalid", ErrInvalidCredentials)
		}
		return nil, translate(err, "get user")
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return fail("invalid", ErrInvalidCredentials)
	}
	if !ok {
		return fail("invalid", ErrInvalidCredentials)
	}
	if user.Disabled {
		return fail("disabled", ErrAccountDisabled)
	}

	issued, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin("success")
	s.logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &LoginResult{
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresAt: issued.ExpiresAt,
		User:      user,
	}, nil
}

// Logout revokes the caller's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, actor *model.AuthContext) error {
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.RevokeToken(ctx, actor.TokenID, actor.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, actor *model.AuthContext) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

// UpdateProfileInput defines the editable profile fields.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile changes the caller's name or phone.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *model.AuthContext, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	var v validator
	if input.FirstName != nil {
		v.check(strings.TrimSpace(*input.FirstName) != "", "first_name", "must not be empty")
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		v.check(strings.TrimSpace(*input.LastName) != "", "last_name", "must not be empty")
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	user.UpdatedAt = s.nowUTC()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, translate(err, "update user")
	}
	return user, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *model.AuthContext, current, next string) error {
	user, err := s.Me(ctx, actor)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil || !ok {
		return fieldError("current_password", "is incorrect")
	}
	if err := auth.ValidatePassword(next); err != nil {
		return fieldError("new_password", fmt.Sprintf("must be %d to %d characters", auth.MinPasswordLength, auth.MaxPasswordLength))
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return translate(err, "update password")
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// isEmail is a shape check only; deliverability is not verified.
func isEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return false
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
