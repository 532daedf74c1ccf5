package domain

import "time"

// Session is the server-side record binding a user to their one current
// refresh token. There is at most one row per user: issuing a new refresh
// token (login or refresh) supersedes the previous one, and revoking clears
// the token without deleting the row. That single-session policy is
// deliberate - it is what makes rotation a security property rather than an
// accident of overwrite semantics.
type Session struct {
	Username string

	// RefreshTokenHash is the SHA-256 fingerprint of the current refresh
	// token, or nil when the session is revoked. A nil hash is structurally
	// distinct from "never logged in" (no row at all).
	RefreshTokenHash *string

	// RefreshExpiry is issuance time + the refresh TTL; checked lazily at
	// refresh time.
	RefreshExpiry time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revoked reports whether the session currently holds no refresh token.
func (s Session) Revoked() bool { return s.RefreshTokenHash == nil }
