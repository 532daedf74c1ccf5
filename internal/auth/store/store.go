package store

import (
	"context"
	"errors"
	"time"

	"github.com/quollhq/tally/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement it. Sub-repositories keep concerns tidy; Tx-scoped stores expose
// the same repos so multi-step operations can run atomically.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit or Rollback the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. The read-check-write sequence inside
	// refresh and login runs through this.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByUsername is the lookup the login path uses.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, username, newHash string) error
}

type Sessions interface {
	// UpsertSession creates the user's session row or overwrites its
	// refresh token and expiry in place. Atomic per username.
	UpsertSession(ctx context.Context, username, tokenHash string, expiry time.Time) error

	// GetSession returns the session row, ErrNotFound when the user has
	// never logged in.
	GetSession(ctx context.Context, username string) (domain.Session, error)

	// RotateSession replaces currentHash with nextHash in a single
	// compare-and-swap update. ErrNotFound means the presented token was
	// already superseded, revoked, or never existed - the rotation lost.
	RotateSession(ctx context.Context, username, currentHash, nextHash string, expiry time.Time) error

	// ClearSession nulls the refresh token, leaving the row behind as the
	// revoked state. Reports whether a row existed; clearing an already
	// cleared session is a no-op, not an error.
	ClearSession(ctx context.Context, username string) (bool, error)

	// ClearExpiredSessions nulls tokens whose expiry has passed.
	// Housekeeping only; expiry is enforced lazily at refresh time.
	ClearExpiredSessions(ctx context.Context) error
}
