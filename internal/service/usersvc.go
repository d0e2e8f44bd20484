package service

import (
	"context"
	"strings"

	"Chatwebserver/internal/domain"
)

const searchLimit = 50

type UserDirectoryStore interface {
	SearchUsers(ctx context.Context, q string, limit int, excludeUserID string) ([]domain.User, error)
	ListUsersExcept(ctx context.Context, userID string) ([]domain.User, error)
}

type UsersService struct {
	Store UserDirectoryStore
}

// Search matches q against full name or email, case-insensitively.
func (s *UsersService) Search(ctx context.Context, q string, excludeUserID string) ([]domain.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.NewValidationError(map[string]string{"query": "required"})
	}
	out, err := s.Store.SearchUsers(ctx, q, searchLimit, excludeUserID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}

func (s *UsersService) Contacts(ctx context.Context, userID string) ([]domain.User, error) {
	out, err := s.Store.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}
