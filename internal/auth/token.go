// Package auth issues and verifies the JWTs that carry a request's
// authenticated identity. Tokens are self-contained: they hold both the user
// ID and the username, so no database lookup is needed per request.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails to parse, carries the
// wrong signing method, or has expired. Callers get no finer detail; the
// distinction doesn't matter to a client and shouldn't leak.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated caller of a request: the opaque user ID plus
// the display name recorded on created books and reviews. It is threaded
// explicitly from the authentication middleware into every handler, never
// held in package-level state.
type Identity struct {
	UserID   string
	Username string
}

// claims is the JWT payload. The user ID travels in the registered "sub"
// claim; the username is a private claim.
type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager returns a TokenManager that signs tokens with secret and
// sets their expiry ttl from the moment of issue.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Generate creates a signed token for the given identity.
func (tm *TokenManager) Generate(identity Identity) (string, error) {
	now := time.Now()
	c := claims{
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(tm.secret)
}

// Validate parses and verifies tokenString and returns the identity it
// carries. The signing method is pinned to HMAC so a token with an attacker
// chosen "alg" header is rejected before signature verification.
func (tm *TokenManager) Validate(tokenString string) (Identity, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: c.Subject, Username: c.Username}, nil
}
