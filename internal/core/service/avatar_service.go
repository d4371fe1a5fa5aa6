package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/phonebook/phonebook-api/internal/core/domain"
	"github.com/phonebook/phonebook-api/internal/core/ports"
)

// AvatarService normalises an uploaded image, moves it into permanent storage
// and points the user record at it.
type AvatarService struct {
	users  ports.UserRepository
	images ports.ImageNormalizer
	store  ports.AvatarStore
	log    zerolog.Logger
}

func NewAvatarService(users ports.UserRepository, images ports.ImageNormalizer, store ports.AvatarStore, log zerolog.Logger) *AvatarService {
	return &AvatarService{users: users, images: images, store: store, log: log}
}

var _ ports.AvatarService = (*AvatarService)(nil)

// UpdateAvatar runs the pipeline for one upload and returns the new avatar URL.
//
// The staged file is removed on every exit path. If the user record cannot be
// updated after the move, the moved file is deleted again.
func (s *AvatarService) UpdateAvatar(ctx context.Context, userID string, upload ports.AvatarUpload) (url string, err error) {
	if upload.TempPath == "" {
		return "", domain.ErrAvatarRequired
	}
	defer s.discardStaged(upload.TempPath)

	previous, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.images.Normalize(upload.TempPath); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}

	url, err = s.store.Save(ctx, upload.TempPath, avatarFilename(userID))
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		if rmErr := s.store.Remove(ctx, url); rmErr != nil {
			s.log.Error().Err(rmErr).Str("user_id", userID).Str("avatar", url).Msg("orphaned avatar file left behind")
		}
		return "", fmt.Errorf("update avatar: %w", err)
	}

	if previous.AvatarURL != url && s.store.Owns(previous.AvatarURL) {
		if err := s.store.Remove(ctx, previous.AvatarURL); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to remove previous avatar")
		}
	}

	s.log.Info().Str("user_id", userID).Str("avatar", url).Msg("avatar updated")
	return url, nil
}

func (s *AvatarService) discardStaged(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", path).Msg("failed to remove staged upload")
	}
}

// avatarFilename is unique per upload: owner id plus a random suffix. The
// normaliser always writes JPEG, whatever the upload was.
func avatarFilename(userID string) string {
	return fmt.Sprintf("%s_%s.jpg", userID, uuid.NewString())
}
