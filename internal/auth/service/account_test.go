package service

import (
	"context"
	"testing"

	"github.com/quollhq/tally/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	_, accounts := newTestService(t)

	t.Run("creates a plain user", func(t *testing.T) {
		require.NoError(t, accounts.Register(ctx, "Alice Smith", "alice", "correct-pw"))

		user, err := accounts.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "Alice Smith", user.DisplayName)
		require.Equal(t, []string{domain.RoleUser}, user.Roles)
		require.NotEqual(t, "correct-pw", user.PasswordHash, "password is stored hashed")
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := accounts.Register(ctx, "Other Alice", "alice", "other-pw")
		require.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("missing fields", func(t *testing.T) {
		require.ErrorIs(t, accounts.Register(ctx, "", "bob", "pw"), ErrMissingFields)
		require.ErrorIs(t, accounts.Register(ctx, "Bob", "", "pw"), ErrMissingFields)
		require.ErrorIs(t, accounts.Register(ctx, "Bob", "bob", ""), ErrMissingFields)
	})

	t.Run("admin variant grants the admin role", func(t *testing.T) {
		require.NoError(t, accounts.RegisterAdmin(ctx, "Root", "root", "root-pw"))

		user, err := accounts.Store.Users().GetUserByUsername(ctx, "root")
		require.NoError(t, err)
		require.Contains(t, user.Roles, domain.RoleAdmin)
	})
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	_, accounts := newTestService(t)
	mustRegister(t, accounts, "alice", "correct-pw")

	t.Run("valid", func(t *testing.T) {
		user, err := accounts.VerifyCredentials(ctx, "alice", "correct-pw")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
	})

	t.Run("failures are uniform", func(t *testing.T) {
		_, errBadPw := accounts.VerifyCredentials(ctx, "alice", "wrong")
		_, errNoUser := accounts.VerifyCredentials(ctx, "mallory", "wrong")

		require.ErrorIs(t, errBadPw, ErrInvalidCredentials)
		require.ErrorIs(t, errNoUser, ErrInvalidCredentials)
		require.Equal(t, errBadPw.Error(), errNoUser.Error(),
			"callers must not learn whether the account exists")
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, accounts := newTestService(t)
	mustRegister(t, accounts, "alice", "old-pw")

	t.Run("wrong current password is rejected", func(t *testing.T) {
		err := accounts.ChangePassword(ctx, "alice", "not-the-pw", "new-pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = accounts.VerifyCredentials(ctx, "alice", "old-pw")
		require.NoError(t, err, "the old password still works")
	})

	t.Run("reusing the current password is rejected", func(t *testing.T) {
		err := accounts.ChangePassword(ctx, "alice", "old-pw", "old-pw")
		require.ErrorIs(t, err, ErrPasswordReused)
	})

	t.Run("correct current password rotates the credential", func(t *testing.T) {
		login, err := svc.Login(ctx, "alice", "old-pw")
		require.NoError(t, err)

		require.NoError(t, accounts.ChangePassword(ctx, "alice", "old-pw", "new-pw"))

		_, err = accounts.VerifyCredentials(ctx, "alice", "old-pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = accounts.VerifyCredentials(ctx, "alice", "new-pw")
		require.NoError(t, err)

		// The live session is revoked alongside the change.
		_, err = svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
		require.ErrorIs(t, err, ErrNoActiveSession)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := accounts.ChangePassword(ctx, "nobody", "old-pw", "new-pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
