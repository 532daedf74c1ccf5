package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/quollhq/tally/internal/auth/domain"
	"github.com/quollhq/tally/internal/auth/store"
	"github.com/quollhq/tally/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st *Store, username string) {
	t.Helper()

	require.NoError(t, st.Users().CreateUser(context.Background(), domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  "Test " + username,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        []string{domain.RoleUser},
	}))
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	seedUser(t, st, "alice")

	u, err := st.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, []string{domain.RoleUser}, u.Roles)

	_, err = st.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("duplicate username rejected", func(t *testing.T) {
		err := st.Users().CreateUser(ctx, domain.User{
			ID:           idx.New().String(),
			Username:     "alice",
			PasswordHash: "x",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update password hash", func(t *testing.T) {
		require.NoError(t, st.Users().UpdatePasswordHash(ctx, "alice", "new-hash"))

		u, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "new-hash", u.PasswordHash)

		require.ErrorIs(t, st.Users().UpdatePasswordHash(ctx, "nobody", "h"), store.ErrNotFound)
	})
}

func TestSessionsRepo_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice")

	_, err := st.Sessions().GetSession(ctx, "alice")
	require.ErrorIs(t, err, store.ErrNotFound, "no session before first login")

	expiry := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "hash-1", expiry))

	s, err := st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, s.RefreshTokenHash)
	require.Equal(t, "hash-1", *s.RefreshTokenHash)
	require.False(t, s.Revoked())

	// Second upsert overwrites in place.
	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "hash-2", expiry))
	s, err = st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "hash-2", *s.RefreshTokenHash)
}

func TestSessionsRepo_RotateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice")

	expiry := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "hash-1", expiry))

	require.NoError(t, st.Sessions().RotateSession(ctx, "alice", "hash-1", "hash-2", expiry))

	// The spent hash loses the swap.
	err := st.Sessions().RotateSession(ctx, "alice", "hash-1", "hash-3", expiry)
	require.ErrorIs(t, err, store.ErrNotFound)

	s, err := st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "hash-2", *s.RefreshTokenHash)
}

func TestSessionsRepo_ClearSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice")

	existed, err := st.Sessions().ClearSession(ctx, "nobody")
	require.NoError(t, err)
	require.False(t, existed, "clearing an absent session is a no-op")

	expiry := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "hash-1", expiry))

	existed, err = st.Sessions().ClearSession(ctx, "alice")
	require.NoError(t, err)
	require.True(t, existed)

	s, err := st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.True(t, s.Revoked(), "row survives revoke with a null token")

	// Idempotent.
	existed, err = st.Sessions().ClearSession(ctx, "alice")
	require.NoError(t, err)
	require.True(t, existed)

	// A revoked session can never win a rotation.
	err = st.Sessions().RotateSession(ctx, "alice", "hash-1", "hash-2", expiry)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSessionsRepo_ClearExpiredSessions(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice")
	seedUser(t, st, "bob")

	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "stale",
		time.Now().UTC().Add(-time.Hour)))
	require.NoError(t, st.Sessions().UpsertSession(ctx, "bob", "fresh",
		time.Now().UTC().Add(time.Hour)))

	require.NoError(t, st.Sessions().ClearExpiredSessions(ctx))

	s, err := st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.True(t, s.Revoked())

	s, err = st.Sessions().GetSession(ctx, "bob")
	require.NoError(t, err)
	require.False(t, s.Revoked())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice")

	expiry := time.Now().UTC().Add(24 * time.Hour)
	require.NoError(t, st.Sessions().UpsertSession(ctx, "alice", "hash-1", expiry))

	boom := store.ErrNotFound
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Sessions().RotateSession(ctx, "alice", "hash-1", "hash-2", expiry); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	s, err := st.Sessions().GetSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "hash-1", *s.RefreshTokenHash, "rotation rolled back")
}
