package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"Chatwebserver/internal/domain"
	"Chatwebserver/internal/relay"
)

// FriendshipsStore persists the friend graph. CreateRequest and Respond must
// apply all of their writes atomically.
type FriendshipsStore interface {
	// CreateRequest records sender -> recipient as pending and stores the
	// notification. It fails with domain.ErrFriendRequestExists when the pair
	// is already friends or a request between them is pending.
	CreateRequest(ctx context.Context, req domain.FriendRequest) (domain.Notification, error)
	// Respond resolves a pending sender -> recipient request and deletes its
	// notification. It fails with domain.ErrNotFound when no such request is pending.
	Respond(ctx context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error
	ListFriends(ctx context.Context, userID string) ([]domain.User, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.User, error)
}

// Relay pushes live events to connected users. Emit reports whether the
// event was queued; an offline recipient is not an error.
type Relay interface {
	Emit(userID, event string, payload any) bool
}

type FriendsService struct {
	Users       UsersStore
	Friendships FriendshipsStore
	Relay       Relay
	Logger      *slog.Logger
	Now         func() time.Time
}

func (s *FriendsService) ListFriends(ctx context.Context, userID string) ([]domain.User, error) {
	return s.Friendships.ListFriends(ctx, userID)
}

func (s *FriendsService) ListIncoming(ctx context.Context, userID string) ([]domain.User, error) {
	return s.Friendships.ListIncoming(ctx, userID)
}

func (s *FriendsService) SendRequest(ctx context.Context, sender domain.User, recipientID string) (domain.Notification, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return domain.Notification{}, domain.NewValidationError(map[string]string{"recipientId": "required"})
	}
	if recipientID == sender.ID {
		return domain.Notification{}, domain.NewValidationError(map[string]string{"recipientId": "cannot send a friend request to yourself"})
	}

	if _, err := s.Users.GetUserByID(ctx, recipientID); err != nil {
		return domain.Notification{}, err
	}

	n, err := s.Friendships.CreateRequest(ctx, domain.FriendRequest{
		SenderID:    sender.ID,
		RecipientID: recipientID,
		Notification: domain.Notification{
			RecipientID: recipientID,
			Sender: domain.UserRef{
				ID:         sender.ID,
				FullName:   sender.FullName,
				ProfilePic: sender.ProfilePic,
			},
			Type:      domain.NotificationFriendRequest,
			Message:   sender.FullName + " has sent you a friend request.",
			CreatedAt: s.now().UTC(),
		},
	})
	if err != nil {
		return domain.Notification{}, err
	}

	s.emit(recipientID, relay.EventNewNotification, n)
	return n, nil
}

func (s *FriendsService) Respond(ctx context.Context, recipientID, senderID string, status domain.FriendRequestStatus) error {
	senderID = strings.TrimSpace(senderID)
	fields := map[string]string{}
	if senderID == "" {
		fields["senderId"] = "required"
	}
	if !status.Valid() {
		fields["status"] = "must be accepted or declined"
	}
	if len(fields) > 0 {
		return domain.NewValidationError(fields)
	}

	return s.Friendships.Respond(ctx, recipientID, senderID, status)
}

func (s *FriendsService) emit(userID, event string, payload any) {
	if s.Relay == nil {
		return
	}
	if !s.Relay.Emit(userID, event, payload) {
		logger := s.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("relay: recipient offline", "user_id", userID, "event", event)
	}
}

func (s *FriendsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
