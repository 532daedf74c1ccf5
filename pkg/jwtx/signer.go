package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues compact HS256-signed tokens using the process signing key.
// The key is loaded once at startup and never mutated; rotating it is a
// redeploy, which invalidates every outstanding access token.
type Signer struct {
	secret []byte
}

// NewSigner wraps the process signing secret. The secret must be non-empty;
// a missing secret is a startup configuration error, not a per-request one.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	return &Signer{secret: secret}, nil
}

// Sign serialises and signs the claim set. Pure apart from the claim
// contents; safe for unlimited concurrent callers.
func (s *Signer) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
