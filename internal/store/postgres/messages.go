package postgres

import (
	"context"
	"fmt"

	"Chatwebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesStore struct {
	pool *pgxpool.Pool
}

func NewMessagesStore(pool *pgxpool.Pool) *MessagesStore {
	return &MessagesStore{pool: pool}
}

func (s *MessagesStore) CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error) {
	if !validID(msg.SenderID) || !validID(msg.RecipientID) {
		return domain.Message{}, domain.ErrNotFound
	}

	const q = `
		INSERT INTO messages (sender_id, recipient_id, text, image, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	out := domain.Message{
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Text:        msg.Text,
		Image:       msg.Image,
	}
	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, msg.SenderID, msg.RecipientID, nullIfEmpty(msg.Text), nullIfEmpty(msg.Image), msg.CreatedAt).Scan(&idUUID, &out.CreatedAt)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", err)
	}
	out.ID = uuidOrEmpty(idUUID)
	return out, nil
}

func (s *MessagesStore) ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if !validID(userA) || !validID(userB) {
		return []domain.Message{}, nil
	}

	const q = `
		SELECT id, sender_id, recipient_id, text, image, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, q, userA, userB)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var (
			m                domain.Message
			idUUID, from, to pgtype.UUID
			text, image      pgtype.Text
		)
		if err := rows.Scan(&idUUID, &from, &to, &text, &image, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ID = uuidOrEmpty(idUUID)
		m.SenderID = uuidOrEmpty(from)
		m.RecipientID = uuidOrEmpty(to)
		m.Text = textOrEmpty(text)
		m.Image = textOrEmpty(image)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return out, nil
}
