package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// Verifier validates HS256 tokens against the process signing key. The
// algorithm is pinned: a token whose header names any other algorithm,
// "none" included, fails with ErrAlgMismatch before its signature is
// considered, which closes downgrade and key-confusion attacks.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier creates a verifier sharing the signer's secret.
func NewVerifier(secret []byte, issuer, audience string) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: signing secret must not be empty")
	}
	return &Verifier{secret: secret, issuer: issuer, audience: audience}, nil
}

// Verify fully validates a token: pinned algorithm, signature, issuer,
// audience, and lifetime. This is the path ordinary API calls take.
func (v *Verifier) Verify(tokenStr string) (Claims, error) {
	claims, err := v.parse(tokenStr)
	if err != nil {
		return Claims{}, err
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(time.Now().UTC()); err != nil {
		return Claims{}, err
	}

	return claims, nil
}

// ExtractExpired validates signature and pinned algorithm while deliberately
// skipping lifetime, issuer, and audience checks. The refresh handshake is
// the only caller: the client presents its recently-expired access token and
// this recovers the identity embedded in it. Rejections are ErrMalformed,
// ErrAlgMismatch, or ErrInvalidSig.
func (v *Verifier) ExtractExpired(tokenStr string) (Claims, error) {
	return v.parse(tokenStr)
}

func (v *Verifier) parse(tokenStr string) (Claims, error) {
	// WithoutClaimsValidation: exp/nbf/iat are the caller's concern. The
	// pinning check lives in the keyfunc so that a wrong algorithm is
	// distinguishable from a bad signature.
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	var claims Claims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrAlgMismatch
		}
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlgMismatch):
			return Claims{}, ErrAlgMismatch
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("jwtx: parse: %w", err)
		}
	}

	parsed, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, ErrMalformed
	}
	return *parsed, nil
}
