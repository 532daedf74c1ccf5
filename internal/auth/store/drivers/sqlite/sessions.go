package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quollhq/tally/internal/auth/domain"
	"github.com/quollhq/tally/internal/auth/store"
)

type sessionsRepo struct {
	q querier
}

func (r *sessionsRepo) UpsertSession(
	ctx context.Context,
	username, tokenHash string,
	expiry time.Time,
) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (username, refresh_token_hash, refresh_expiry)
		VALUES (?, ?, ?)
		ON CONFLICT (username) DO UPDATE SET
			refresh_token_hash = excluded.refresh_token_hash,
			refresh_expiry = excluded.refresh_expiry,
			updated_at = CURRENT_TIMESTAMP`,
		username, tokenHash, expiry.UTC(),
	)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, username string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT username, refresh_token_hash, refresh_expiry, created_at, updated_at
		FROM sessions WHERE username = ?`,
		username,
	)

	var s domain.Session
	var hash sql.NullString
	err := row.Scan(&s.Username, &hash, &s.RefreshExpiry, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.RefreshTokenHash = mapNullStringPtr(hash)
	return s, nil
}

// RotateSession is a single-statement compare-and-swap: the update only lands
// when the stored hash still equals currentHash, so two racing rotations for
// the same user cannot both win.
func (r *sessionsRepo) RotateSession(
	ctx context.Context,
	username, currentHash, nextHash string,
	expiry time.Time,
) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = ?, refresh_expiry = ?, updated_at = CURRENT_TIMESTAMP
		WHERE username = ? AND refresh_token_hash = ?`,
		nextHash, expiry.UTC(), username, currentHash,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) ClearSession(ctx context.Context, username string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE username = ?`,
		username,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionsRepo) ClearExpiredSessions(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE refresh_token_hash IS NOT NULL AND refresh_expiry < ?`,
		time.Now().UTC(),
	)
	return err
}
