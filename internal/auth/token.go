package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/rentdesk/rentdesk/internal/model"
)

// MinSecretLength is the shortest HMAC secret accepted for signing.
const MinSecretLength = 32

var (
	// ErrInvalidToken covers malformed, badly signed and wrong-issuer tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when the token's exp has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrWeakSecret is returned when the signing secret is too short.
	ErrWeakSecret = errors.New("jwt secret too short")
)

// Claims are the JWT claims issued at login.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token and its metadata.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new token for the user.
func (t *TokenIssuer) Issue(user *model.User) (*IssuedToken, error) {
	now := t.now().UTC()
	expiresAt := now.Add(t.ttl)
	tokenID := ulid.Make().String()

	claims := Claims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// Parse verifies the token and returns the caller it identifies.
func (t *TokenIssuer) Parse(tokenString string) (*model.AuthContext, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.ID == "" || !model.IsValidRole(claims.Role) {
		return nil, ErrInvalidToken
	}

	caller := &model.AuthContext{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		caller.IssuedAt = claims.IssuedAt.Time
	}
	return caller, nil
}
