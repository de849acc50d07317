package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

const testPassword = "correct horse battery"

func register(t *testing.T, f *fixture, email, role string) *model.User {
	t.Helper()
	u, err := f.svc.Auth.Register(f.ctx, RegisterInput{
		Email:     email,
		Password:  testPassword,
		FirstName: "Sam",
		LastName:  "Okafor",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	t.Run("normalizes email and hashes the password", func(t *testing.T) {
		f := newFixture(t)
		u := register(t, f, "  Sam@Example.COM ", model.RoleLandlord)

		assert.Equal(t, "sam@example.com", u.Email)
		assert.NotEqual(t, testPassword, u.PasswordHash)
		assert.Contains(t, u.PasswordHash, "$argon2id$")
	})

	t.Run("links existing tenant records to a new tenant account", func(t *testing.T) {
		f := newFixture(t)
		landlord := f.user(model.RoleLandlord, "owner@example.com")
		record := f.tenant(landlord.UserID, "")

		u := register(t, f, record.Email, model.RoleTenant)

		linked, err := f.store.GetTenant(f.ctx, record.ID)
		require.NoError(t, err)
		require.NotNil(t, linked.UserID)
		assert.Equal(t, u.ID, *linked.UserID)
	})

	t.Run("landlord accounts are not linked", func(t *testing.T) {
		f := newFixture(t)
		landlord := f.user(model.RoleLandlord, "owner@example.com")
		record := f.tenant(landlord.UserID, "")

		register(t, f, record.Email, model.RoleLandlord)

		got, err := f.store.GetTenant(f.ctx, record.ID)
		require.NoError(t, err)
		assert.Nil(t, got.UserID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)
		register(t, f, "sam@example.com", model.RoleLandlord)

		_, err := f.svc.Auth.Register(f.ctx, RegisterInput{
			Email: "SAM@example.com", Password: testPassword, FirstName: "A", LastName: "B", Role: model.RoleTenant,
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("rejects self-registered admins and bad input", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Auth.Register(f.ctx, RegisterInput{
			Email: "not-an-email", Password: "short", Role: model.RoleAdmin,
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		for _, field := range []string{"email", "password", "first_name", "last_name", "role"} {
			assert.Contains(t, ve.Fields, field)
		}
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	var slept []time.Duration
	f.svc.Auth.sleep = func(_ context.Context, d time.Duration) { slept = append(slept, d) }
	u := register(t, f, "sam@example.com", model.RoleLandlord)

	t.Run("success", func(t *testing.T) {
		res, err := f.svc.Auth.Login(f.ctx, "Sam@Example.com", testPassword)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.Equal(t, u.ID, res.User.ID)
		assert.True(t, res.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password waits out the minimum delay", func(t *testing.T) {
		slept = nil
		_, err := f.svc.Auth.Login(f.ctx, "sam@example.com", "wrong password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		require.Len(t, slept, 1)
		assert.Greater(t, slept[0], time.Duration(0))
		assert.LessOrEqual(t, slept[0], 200*time.Millisecond)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		slept = nil
		_, err := f.svc.Auth.Login(f.ctx, "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Len(t, slept, 1)
	})

	t.Run("disabled account", func(t *testing.T) {
		stored, err := f.store.GetUserByID(f.ctx, u.ID)
		require.NoError(t, err)
		stored.Disabled = true
		require.NoError(t, f.store.UpdateUser(f.ctx, stored))

		_, err = f.svc.Auth.Login(f.ctx, "sam@example.com", testPassword)
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})

	logins := f.metrics.Snapshot().Logins
	assert.Equal(t, uint64(1), logins["success"])
	assert.Equal(t, uint64(2), logins["invalid"])
	assert.Equal(t, uint64(1), logins["disabled"])
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	actor := f.user(model.RoleTenant, "t@example.com")

	require.NoError(t, f.svc.Auth.Logout(f.ctx, actor))
	assert.Equal(t, []string{actor.TokenID}, f.tokens.ids)
}

func TestProfileAndPassword(t *testing.T) {
	f := newFixture(t)
	u := register(t, f, "sam@example.com", model.RoleTenant)
	actor := &model.AuthContext{UserID: u.ID, Email: u.Email, Role: u.Role}

	updated, err := f.svc.Auth.UpdateProfile(f.ctx, actor, UpdateProfileInput{Phone: ptr(" 555-0100 ")})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, "Sam", updated.FirstName)

	_, err = f.svc.Auth.UpdateProfile(f.ctx, actor, UpdateProfileInput{FirstName: ptr(" ")})
	requireValidationField(t, err, "first_name")

	err = f.svc.Auth.ChangePassword(f.ctx, actor, "not my password", "another good password")
	requireValidationField(t, err, "current_password")

	err = f.svc.Auth.ChangePassword(f.ctx, actor, testPassword, "short")
	requireValidationField(t, err, "new_password")

	require.NoError(t, f.svc.Auth.ChangePassword(f.ctx, actor, testPassword, "another good password"))
	_, err = f.svc.Auth.Login(f.ctx, u.Email, "another good password")
	assert.NoError(t, err)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, isEmail("a@b.co"))
	assert.False(t, isEmail("@b.co"))
	assert.False(t, isEmail("a@"))
	assert.False(t, isEmail("a@localhost"))
	assert.False(t, isEmail("a b@c.io"))
}
