package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. The access token window is deliberately tight:
// the refresh handshake accepts expired access tokens, so callers lose
// nothing by the short lifetime.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 1 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh sessions.
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Claims are the identity facts embedded in an access token. The subject is
// the username; roles ride along so the refresh path can re-issue without a
// directory lookup.
type Claims struct {
	jwt.RegisteredClaims

	// Roles held by the authenticated user, one entry per role.
	Roles []string `json:"roles,omitempty"`

	// DisplayName is the human-facing name for the user.
	DisplayName string `json:"display_name,omitempty"`
}

// NewAccessClaims builds a claim set for an access token. Each call mints a
// fresh jti; everything else is deterministic given the inputs.
func NewAccessClaims(
	subject, displayName string,
	roles []string,
	ttl time.Duration,
	issuer, audience string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Roles:       roles,
		DisplayName: displayName,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasRole reports whether the claim set carries the given role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ValidateIssuer checks the issuer against the expected value. An empty
// expectation enforces nothing.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that the expected audience is present. An empty
// expectation enforces nothing.
func (c *Claims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil
	}
	if !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}

// ValidateExpiry ensures the token has not expired and is not used before
// its nbf, when either is set.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
