package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Chatwebserver/internal/domain"
	"Chatwebserver/internal/media"
)

type ProfileStore interface {
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (domain.User, error)
}

type ImageStore interface {
	SaveDataURL(ctx context.Context, dataURL string) (string, error)
}

type ProfileService struct {
	Store  ProfileStore
	Images ImageStore
}

// Update replaces the display name and/or profile picture. profilePic is a
// base64 image data URL; the stored reference replaces it.
func (s *ProfileService) Update(ctx context.Context, userID string, fullName, profilePic *string) (domain.User, error) {
	if fullName == nil && profilePic == nil {
		return domain.User{}, domain.NewValidationError(map[string]string{"fullName": "fullName or profilePic is required"})
	}

	var update domain.ProfileUpdate
	if fullName != nil {
		name := strings.TrimSpace(*fullName)
		if name == "" {
			return domain.User{}, domain.NewValidationError(map[string]string{"fullName": "must not be empty"})
		}
		if utf8.RuneCountInString(name) > 64 {
			return domain.User{}, domain.NewValidationError(map[string]string{"fullName": "must be 64 characters or less"})
		}
		for _, r := range name {
			if r < 32 {
				return domain.User{}, domain.NewValidationError(map[string]string{"fullName": "contains invalid characters"})
			}
		}
		update.FullName = &name
	}

	if profilePic != nil {
		ref, err := s.Images.SaveDataURL(ctx, *profilePic)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return domain.User{}, domain.NewValidationError(map[string]string{"profilePic": "must be a base64 image data url"})
			}
			return domain.User{}, err
		}
		update.ProfilePic = &ref
	}

	return s.Store.UpdateProfile(ctx, userID, update)
}
