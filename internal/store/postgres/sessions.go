package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Chatwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionsStore keeps server-side login sessions. Revocation and expiry are
// judged by the caller from the returned row; PurgeExpired reclaims rows
// that can no longer authenticate.
type SessionsStore struct {
	pool *pgxpool.Pool
}

func NewSessionsStore(pool *pgxpool.Pool) *SessionsStore {
	return &SessionsStore{pool: pool}
}

type sessionRow struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt pgtype.Timestamptz
}

func (r sessionRow) toDomain() domain.Session {
	return domain.Session{
		ID:        uuidOrEmpty(r.ID),
		UserID:    uuidOrEmpty(r.UserID),
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
		RevokedAt: timestamptzPtr(r.RevokedAt),
	}
}

func (s *SessionsStore) CreateSession(ctx context.Context, userID string, expiresAt time.Time, ip, userAgent string) (string, error) {
	if !validID(userID) {
		return "", fmt.Errorf("create session: %w", domain.ErrNotFound)
	}

	const q = `
		INSERT INTO sessions (user_id, expires_at, ip, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id pgtype.UUID
	if err := s.pool.QueryRow(ctx, q, userID, expiresAt, nullIfEmpty(ip), nullIfEmpty(userAgent)).Scan(&id); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return uuidOrEmpty(id), nil
}

// GetSession returns the row even when it is revoked or expired.
func (s *SessionsStore) GetSession(ctx context.Context, sessionID string) (domain.Session, error) {
	if !validID(sessionID) {
		return domain.Session{}, domain.ErrNotFound
	}

	const q = `
		SELECT id, user_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = $1
	`

	rows, _ := s.pool.Query(ctx, q, sessionID)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[sessionRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return row.toDomain(), nil
}

// RevokeSession is idempotent; unknown and already revoked ids are ignored.
func (s *SessionsStore) RevokeSession(ctx context.Context, sessionID string, when time.Time) error {
	if !validID(sessionID) {
		return nil
	}

	const q = `UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`
	if _, err := s.pool.Exec(ctx, q, sessionID, when); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired deletes sessions that expired or were revoked before cutoff.
func (s *SessionsStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
		DELETE FROM sessions
		WHERE expires_at < $1 OR revoked_at < $1
	`

	tag, err := s.pool.Exec(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
