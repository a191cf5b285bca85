package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the verified content of a Trackly JWT.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   domain.Role
	Type   TokenType
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Type  string `json:"type"`
}

// Tokens issues and verifies HS256 access and refresh tokens.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      clockwork.Clock
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration, clock clockwork.Clock) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// IssueAccess creates a short-lived access token for the user.
func (t *Tokens) IssueAccess(user *domain.User) (string, error) {
	return t.issue(user, TokenAccess, t.accessTTL)
}

// IssueRefresh creates a long-lived refresh token for the user.
func (t *Tokens) IssueRefresh(user *domain.User) (string, error) {
	return t.issue(user, TokenRefresh, t.refreshTTL)
}

// AccessTTL returns the configured access token lifetime.
func (t *Tokens) AccessTTL() time.Duration { return t.accessTTL }

func (t *Tokens) issue(user *domain.User, typ TokenType, ttl time.Duration) (string, error) {
	now := t.clock.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: user.Email,
		Role:  string(user.Role),
		Type:  string(typ),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token of the expected type. All failure
// modes (bad signature, expiry, wrong type, malformed subject) collapse to
// ErrInvalidToken; callers never learn why a token was rejected.
func (t *Tokens) Verify(tokenString string, expected TokenType) (*Claims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.clock.Now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != string(expected) {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: userID,
		Email:  claims.Email,
		Role:   role,
		Type:   expected,
	}, nil
}
