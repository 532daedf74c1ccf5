package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/quollhq/tally/internal/auth/domain"
	"github.com/quollhq/tally/internal/auth/store"
	"github.com/quollhq/tally/pkg/cryptox"
	"github.com/quollhq/tally/pkg/idx"
	"github.com/quollhq/tally/pkg/slogx"
)

var (
	ErrUsernameTaken  = errors.New("username_taken")
	ErrMissingFields  = errors.New("missing_fields")
	ErrPasswordReused = errors.New("password_reused")
)

// AccountService is the user directory: registration, credential
// verification, and password changes. SessionService consumes it through the
// CredentialVerifier interface and never sees password hashes.
type AccountService struct {
	Store store.Store
}

// VerifyCredentials checks a username/password pair. Both an unknown
// username and a wrong password come back as ErrInvalidCredentials so the
// two are indistinguishable to callers.
func (s *AccountService) VerifyCredentials(
	ctx context.Context,
	username, password string,
) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a user with the standard role.
func (s *AccountService) Register(
	ctx context.Context,
	displayName, username, password string,
) error {
	return s.register(ctx, displayName, username, password, domain.RoleUser)
}

// RegisterAdmin creates a user carrying the admin role.
func (s *AccountService) RegisterAdmin(
	ctx context.Context,
	displayName, username, password string,
) error {
	return s.register(ctx, displayName, username, password, domain.RoleAdmin)
}

func (s *AccountService) register(
	ctx context.Context,
	displayName, username, password, role string,
) error {
	if username == "" || password == "" {
		return ErrMissingFields
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Roles:        []string{role},
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrUsernameTaken
		}
		return err
	}

	slogx.FromContext(ctx).Info("user registered", "username", username, "role", role)
	return nil
}

// ChangePassword verifies the caller's current password and swaps in a new
// hash. The user's session is cleared in the same transaction: a password
// change invalidates any outstanding refresh token.
func (s *AccountService) ChangePassword(
	ctx context.Context,
	username, currentPassword, newPassword string,
) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	if currentPassword == newPassword {
		return ErrPasswordReused
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, username, hash); err != nil {
			return err
		}
		_, err := tx.Sessions().ClearSession(ctx, username)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "username", username)
	return nil
}
