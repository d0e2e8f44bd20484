package postgres

import (
	"context"
	"fmt"

	"Chatwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

// CreateRequest inserts the pending pair and the recipient's notification in
// one transaction.
func (s *FriendshipsStore) CreateRequest(ctx context.Context, req domain.FriendRequest) (domain.Notification, error) {
	if !validID(req.SenderID) || !validID(req.RecipientID) {
		return domain.Notification{}, domain.ErrNotFound
	}

	n := req.Notification
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, req.RecipientID).Scan(&exists); err != nil {
			return fmt.Errorf("check recipient: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		const insertReq = `
			INSERT INTO friendships (requester_id, addressee_id, status, created_at)
			VALUES ($1, $2, 'pending', $3)
		`
		if _, err := tx.Exec(ctx, insertReq, req.SenderID, req.RecipientID, n.CreatedAt); err != nil {
			if isUniqueViolation(err, "friendships_pair_uq") || isUniqueViolation(err, "friendships_pkey") {
				return domain.ErrFriendRequestExists
			}
			return fmt.Errorf("create friend request: %w", err)
		}

		const insertNote = `
			INSERT INTO notifications (recipient_id, sender_id, type, message, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`
		var idUUID pgtype.UUID
		err := tx.QueryRow(ctx, insertNote, req.RecipientID, req.SenderID, string(n.Type), n.Message, n.CreatedAt).Scan(&idUUID, &n.CreatedAt)
		if err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
		n.ID = uuidOrEmpty(idUUID)
		return nil
	})
	if err != nil {
		return domain.Notification{}, err
	}

	n.RecipientID = req.RecipientID
	n.Read = false
	return n, nil
}

func (s *FriendshipsStore) Respond(ctx context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
	if !validID(recipientID) || !validID(senderID) {
		return domain.ErrNotFound
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			q    string
			verb string
		)
		switch status {
		case domain.FriendRequestAccepted:
			verb = "accept"
			q = `
				UPDATE friendships
				SET status = 'accepted', responded_at = now()
				WHERE requester_id = $1 AND addressee_id = $2 AND status = 'pending'
			`
		case domain.FriendRequestDeclined:
			verb = "decline"
			q = `
				DELETE FROM friendships
				WHERE requester_id = $1 AND addressee_id = $2 AND status = 'pending'
			`
		default:
			return domain.NewValidationError(map[string]string{"status": "must be accepted or declined"})
		}

		ct, err := tx.Exec(ctx, q, senderID, recipientID)
		if err != nil {
			return fmt.Errorf("%s friend request: %w", verb, err)
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		const delNote = `
			DELETE FROM notifications
			WHERE recipient_id = $1 AND sender_id = $2 AND type = 'friend_request'
		`
		if _, err := tx.Exec(ctx, delNote, recipientID, senderID); err != nil {
			return fmt.Errorf("delete friend request notification: %w", err)
		}
		return nil
	})
}

func (s *FriendshipsStore) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	if !validID(userID) {
		return []domain.User{}, nil
	}

	const q = `SELECT ` + userColumns + `
		FROM friendships fr
		JOIN users u ON u.id = CASE
			WHEN fr.requester_id = $1 THEN fr.addressee_id
			ELSE fr.requester_id
		END
		WHERE fr.status = 'accepted' AND (fr.requester_id = $1 OR fr.addressee_id = $1)
		ORDER BY u.full_name ASC, u.id ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return collectUsers(rows, "friends")
}

func (s *FriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.User, error) {
	if !validID(userID) {
		return []domain.User{}, nil
	}

	const q = `SELECT ` + userColumns + `
		FROM friendships fr
		JOIN users u ON u.id = fr.requester_id
		WHERE fr.status = 'pending' AND fr.addressee_id = $1
		ORDER BY fr.created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return collectUsers(rows, "incoming requests")
}
