package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quollhq/tally/internal/auth/domain"
	"github.com/quollhq/tally/internal/auth/store"
	"github.com/quollhq/tally/pkg/cryptox"
	"github.com/quollhq/tally/pkg/jwtx"
	"github.com/quollhq/tally/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidAccessToken = errors.New("invalid_access_token")
	ErrNoActiveSession    = errors.New("no_active_session")
	ErrRefreshRejected    = errors.New("refresh_rejected")
	ErrUserNotFound       = errors.New("user_not_found")
)

// CredentialVerifier is the capability this service needs from the user
// directory: check a username/password pair and hand back the verified
// identity. AccountService provides the store-backed implementation.
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (domain.User, error)
}

// SessionService orchestrates the token lifecycle: login issues an access
// token and mints the user's single refresh session, refresh rotates that
// session using the identity recovered from an expired access token, and
// revoke clears it. It is the only component that touches the session store.
type SessionService struct {
	Signer     *jwtx.Signer
	Verifier   *jwtx.Verifier
	Store      store.Store
	Directory  CredentialVerifier
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies the caller's credentials against the directory and, on
// success, returns a fresh access token plus a new refresh token. Any
// previously issued refresh token for the user is superseded. Rejections are
// uniform: the caller cannot tell an unknown username from a wrong password.
func (s *SessionService) Login(
	ctx context.Context,
	username, password string,
) (*domain.LoginResult, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	user, err := s.Directory.VerifyCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			l.Info("login rejected", "username", username)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	claims := jwtx.NewAccessClaims(
		user.Username, user.DisplayName, user.Roles,
		s.AccessTTL, s.Issuer, s.Audience, now,
	)
	accessToken, err := s.Signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	// The session must be durably recorded before any token leaves the
	// building; otherwise the client could hold a refresh token the server
	// cannot validate.
	expiry := now.Add(s.RefreshTTL)
	err = s.Store.Sessions().UpsertSession(ctx, user.Username,
		cryptox.FingerprintToken(refreshToken), expiry)
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	l.Info("login succeeded", "username", user.Username)

	return &domain.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    claims.ExpiresAt.Time,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
	}, nil
}

// Refresh exchanges an expired access token plus the matching refresh token
// for a fresh pair. The access token's signature and algorithm are fully
// validated; only its lifetime is forgiven. Role claims carry over from the
// extracted token without a directory round trip. Rotation-on-use: the spent
// refresh token is invalid the moment this returns.
func (s *SessionService) Refresh(
	ctx context.Context,
	accessToken, refreshToken string,
) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	claims, err := s.Verifier.ExtractExpired(accessToken)
	if err != nil {
		l.Info("refresh rejected: bad access token", "err", err)
		return nil, ErrInvalidAccessToken
	}

	username := claims.Subject
	if username == "" {
		return nil, ErrInvalidAccessToken
	}

	newClaims := jwtx.NewAccessClaims(
		username, claims.DisplayName, claims.Roles,
		s.AccessTTL, s.Issuer, s.Audience, now,
	)
	newAccess, err := s.Signer.Sign(newClaims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	newRefresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	presentedHash := cryptox.FingerprintToken(refreshToken)
	newHash := cryptox.FingerprintToken(newRefresh)

	// The read-check-write below is the one racy sequence in the system;
	// it runs in a transaction and ends in a compare-and-swap so that two
	// concurrent refreshes for the same user have exactly one winner.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.Sessions().GetSession(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoActiveSession
			}
			return err
		}

		if rec.Revoked() {
			return ErrNoActiveSession
		}
		if !cryptox.FingerprintsEqual(*rec.RefreshTokenHash, presentedHash) {
			return ErrRefreshRejected
		}
		if now.After(rec.RefreshExpiry) {
			return ErrRefreshRejected
		}

		err = tx.Sessions().RotateSession(ctx, username, presentedHash, newHash,
			now.Add(s.RefreshTTL))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost the swap to a concurrent rotation.
				return ErrRefreshRejected
			}
			return fmt.Errorf("persist rotation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("session rotated", "username", username)

	return &domain.TokenPair{
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
	}, nil
}

// Revoke clears the user's session, leaving the record behind in the revoked
// state. ErrUserNotFound means the user never had a session; callers may
// treat that as success.
func (s *SessionService) Revoke(ctx context.Context, username string) error {
	existed, err := s.Store.Sessions().ClearSession(ctx, username)
	if err != nil {
		return err
	}
	if !existed {
		return ErrUserNotFound
	}

	slogx.FromContext(ctx).Info("session revoked", "username", username)
	return nil
}
