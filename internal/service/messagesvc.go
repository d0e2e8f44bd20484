package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"Chatwebserver/internal/domain"
	"Chatwebserver/internal/media"
	"Chatwebserver/internal/relay"
)

type MessagesStore interface {
	CreateMessage(ctx context.Context, msg domain.NewMessage) (domain.Message, error)
	// ListConversation returns messages exchanged between the two users in
	// either direction, oldest first.
	ListConversation(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

type MessagesService struct {
	Users    UsersStore
	Messages MessagesStore
	Images   ImageStore
	Relay    Relay
	Logger   *slog.Logger
	Now      func() time.Time
}

func (s *MessagesService) Conversation(ctx context.Context, userID, otherID string) ([]domain.Message, error) {
	otherID = strings.TrimSpace(otherID)
	if otherID == "" {
		return nil, domain.NewValidationError(map[string]string{"userId": "required"})
	}

	msgs, err := s.Messages.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

func (s *MessagesService) Send(ctx context.Context, senderID, recipientID, text, image string) (domain.Message, error) {
	recipientID = strings.TrimSpace(recipientID)
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)

	if recipientID == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"userId": "required"})
	}
	if text == "" && image == "" {
		return domain.Message{}, domain.NewValidationError(map[string]string{"text": "text or image is required"})
	}

	if _, err := s.Users.GetUserByID(ctx, recipientID); err != nil {
		return domain.Message{}, err
	}

	var imageRef string
	if image != "" {
		ref, err := s.Images.SaveDataURL(ctx, image)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return domain.Message{}, domain.NewValidationError(map[string]string{"image": "must be a base64 image data url"})
			}
			return domain.Message{}, err
		}
		imageRef = ref
	}

	msg, err := s.Messages.CreateMessage(ctx, domain.NewMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Text:        text,
		Image:       imageRef,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return domain.Message{}, err
	}

	if s.Relay != nil && !s.Relay.Emit(recipientID, relay.EventNewMessage, msg) {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("relay: recipient offline", "user_id", recipientID, "event", relay.EventNewMessage)
	}

	return msg, nil
}

func (s *MessagesService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
