package service

import (
	"context"

	"Chatwebserver/internal/domain"
)

type NotificationsStore interface {
	// ListNotifications returns the user's notifications newest first with
	// the sender populated.
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationService struct {
	Store NotificationsStore
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := s.Store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Notification{}
	}
	return out, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	_, err := s.Store.MarkAllRead(ctx, userID)
	return err
}
