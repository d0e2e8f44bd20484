package postgres

import (
	"context"
	"fmt"

	"Chatwebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationsStore struct {
	pool *pgxpool.Pool
}

func NewNotificationsStore(pool *pgxpool.Pool) *NotificationsStore {
	return &NotificationsStore{pool: pool}
}

func (s *NotificationsStore) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	if !validID(userID) {
		return []domain.Notification{}, nil
	}

	const q = `
		SELECT n.id, n.recipient_id, n.type, n.message, n.read, n.created_at,
		       u.id, u.full_name, u.profile_pic
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.recipient_id = $1
		ORDER BY n.created_at DESC, n.id DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var (
			n                       domain.Notification
			typ                     string
			idUUID, recipient, from pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &recipient, &typ, &n.Message, &n.Read, &n.CreatedAt, &from, &n.Sender.FullName, &n.Sender.ProfilePic); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = uuidOrEmpty(idUUID)
		n.RecipientID = uuidOrEmpty(recipient)
		n.Sender.ID = uuidOrEmpty(from)
		n.Type = domain.NotificationType(typ)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationsStore) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if !validID(userID) {
		return 0, nil
	}

	const q = `
		UPDATE notifications
		SET read = true
		WHERE recipient_id = $1 AND read = false
	`
	ct, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return ct.RowsAffected(), nil
}
