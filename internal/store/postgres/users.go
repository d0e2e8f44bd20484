package postgres

import (
	"context"
	"errors"
	"fmt"

	"Chatwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userColumns selects a full domain.User from alias u, relationship lists included.
const userColumns = `
	u.id, u.email, u.full_name, u.profile_pic, u.created_at, u.updated_at,
	ARRAY(
		SELECT (CASE WHEN f.requester_id = u.id THEN f.addressee_id ELSE f.requester_id END)::text
		FROM friendships f
		WHERE f.status = 'accepted' AND (f.requester_id = u.id OR f.addressee_id = u.id)
		ORDER BY f.responded_at, f.created_at
	),
	ARRAY(
		SELECT f.addressee_id::text FROM friendships f
		WHERE f.status = 'pending' AND f.requester_id = u.id
		ORDER BY f.created_at
	),
	ARRAY(
		SELECT f.requester_id::text FROM friendships f
		WHERE f.status = 'pending' AND f.addressee_id = u.id
		ORDER BY f.created_at
	)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (domain.User, error) {
	var (
		u                       domain.User
		idUUID                  pgtype.UUID
		friends, sent, received pgtype.FlatArray[string]
	)
	dest := []any{&idUUID, &u.Email, &u.FullName, &u.ProfilePic, &u.CreatedAt, &u.UpdatedAt, &friends, &sent, &received}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.User{}, err
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Friends = idList(friends)
	u.FriendRequestsSent = idList(sent)
	u.FriendRequestsReceived = idList(received)
	return u, nil
}

func collectUsers(rows pgx.Rows, what string) ([]domain.User, error) {
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	return out, nil
}

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) CreateUser(ctx context.Context, email, fullName, passwordHash string) (domain.User, error) {
	const q = `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, full_name, profile_pic, created_at, updated_at
	`

	var (
		u      domain.User
		idUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, email, fullName, passwordHash).Scan(
		&idUUID,
		&u.Email,
		&u.FullName,
		&u.ProfilePic,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Friends = []string{}
	u.FriendRequestsSent = []string{}
	u.FriendRequestsReceived = []string{}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrNotFound
	}

	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `SELECT ` + userColumns + `, u.password_hash FROM users u WHERE u.email = $1 LIMIT 1`

	var hash string
	u, err := scanUser(s.pool.QueryRow(ctx, q, email), &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}
	return domain.UserWithPassword{User: u, PasswordHash: hash}, nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.User, error) {
	if !validID(userID) {
		return domain.User{}, domain.ErrNotFound
	}

	const q = `
		UPDATE users
		SET full_name = COALESCE($2, full_name),
		    profile_pic = COALESCE($3, profile_pic),
		    updated_at = now()
		WHERE id = $1
	`
	ct, err := s.pool.Exec(ctx, q, userID, update.FullName, update.ProfilePic)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.User{}, domain.ErrNotFound
	}
	return s.GetUserByID(ctx, userID)
}

// SearchUsers matches q as a case-insensitive substring of full name or email.
func (s *UsersStore) SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	const query = `SELECT ` + userColumns + `
		FROM users u
		WHERE u.id::text <> $3
		  AND (u.full_name ILIKE $1 OR u.email ILIKE $1)
		ORDER BY u.full_name ASC, u.id ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, likePattern(q), limit, excludeUserID)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return collectUsers(rows, "users")
}

func (s *UsersStore) ListUsersExcept(ctx context.Context, userID string) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + `
		FROM users u
		WHERE u.id::text <> $1
		ORDER BY u.full_name ASC, u.id ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collectUsers(rows, "users")
}

func mapUserWriteError(err error) error {
	if isUniqueViolation(err, "users_email_uq") {
		return domain.ErrEmailTaken
	}
	return fmt.Errorf("create user: %w", err)
}
