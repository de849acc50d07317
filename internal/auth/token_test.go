package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, "rentdesk-test", time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("too-short", "rentdesk", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)
	user := &model.User{ID: "01HUSER", Email: "lee@example.com", Role: model.RoleLandlord}

	issued, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	authCtx, err := issuer.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "01HUSER", authCtx.UserID)
	assert.Equal(t, model.RoleLandlord, authCtx.Role)
	assert.Equal(t, "lee@example.com", authCtx.Email)
	assert.Equal(t, issued.TokenID, authCtx.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt.Add(-issuer.TTL()), authCtx.IssuedAt, time.Second)
}

func TestTokenIssuer_ParseExpired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	issued, err := issuer.Issue(&model.User{ID: "u1", Role: model.RoleTenant})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Parse(issued.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_ParseRejectsTampering(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)
	issued, err := issuer.Issue(&model.User{ID: "u1", Role: model.RoleTenant})
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = issuer.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_ParseRejectsOtherIssuerAndSecret(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)

	other, err := NewTokenIssuer(testSecret, "someone-else", time.Hour)
	require.NoError(t, err)
	issued, err := other.Issue(&model.User{ID: "u1", Role: model.RoleTenant})
	require.NoError(t, err)
	_, err = issuer.Parse(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherSecret, err := NewTokenIssuer(strings.Repeat("z", 32), "rentdesk-test", time.Hour)
	require.NoError(t, err)
	issued, err = otherSecret.Issue(&model.User{ID: "u1", Role: model.RoleTenant})
	require.NoError(t, err)
	_, err = issuer.Parse(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_ParseRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)
	claims := Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			Subject:   "attacker",
			Issuer:    "rentdesk-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestTokenIssuer_ParseRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer(t)
	issued, err := issuer.Issue(&model.User{ID: "u1", Role: "superuser"})
	require.NoError(t, err)

	_, err = issuer.Parse(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
