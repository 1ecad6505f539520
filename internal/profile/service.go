package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/common/validation"
	"github.com/frahmantamala/dayflow/internal/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	UpdateProfile(ctx context.Context, id int64, update user.ProfileUpdate) error
	SetProfileImage(ctx context.Context, id int64, path string) error
}

// PictureStore persists processed profile pictures.
type PictureStore interface {
	Save(userID int64, data []byte) (string, error)
	Remove(publicPath string) error
}

var (
	ErrNoImage         = internal.NewValidationError("Please upload an image file", internal.ErrCodeInvalidImage)
	ErrInvalidImage    = internal.NewValidationError("Profile picture must be a PNG, JPEG or WebP image", internal.ErrCodeInvalidImage)
	ErrImageTooLarge   = internal.NewValidationError("Profile picture must not exceed 5MB", internal.ErrCodeInvalidImage)
	ErrImageDimensions = internal.NewValidationError("Profile picture must not exceed 4096x4096 pixels", internal.ErrCodeInvalidImage)
	ErrNoPicture       = internal.NewValidationError("No profile picture to delete", internal.ErrCodeNoProfilePicture)
	ErrEmailTaken      = internal.NewConflictError("Email is already in use", internal.ErrCodeUserExists)
	ErrProfileMissing  = internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
)

type Service struct {
	repo     RepositoryAPI
	pictures PictureStore
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, pictures PictureStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		pictures: pictures,
		logger:   logger,
	}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(err, "Failed to fetch profile")
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, dto UpdateProfileDTO) (*user.User, error) {
	dto = dto.normalize()
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	update := dto.toUpdate()
	if !update.Empty() {
		if err := s.repo.UpdateProfile(ctx, userID, update); err != nil {
			if errors.Is(err, internal.ErrUserExists) {
				return nil, ErrEmailTaken
			}
			s.logger.Error("failed to update profile", "user_id", userID, "error", err)
			return nil, s.lookupError(err, "Failed to update profile")
		}
		s.logger.Info("profile updated", "user_id", userID)
	}

	return s.GetProfile(ctx, userID)
}

// UploadPicture replaces the caller's profile picture with raw, normalised
// to a square PNG.
func (s *Service) UploadPicture(ctx context.Context, userID int64, raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrNoImage
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", s.lookupError(err, "Failed to upload profile picture")
	}

	data, err := NormalizeAvatar(raw)
	if err != nil {
		switch {
		case errors.Is(err, errUnsupportedImage), errors.Is(err, errUndecodableImage):
			return "", ErrInvalidImage.WithCause(err)
		case errors.Is(err, errOversizedImage):
			return "", ErrImageDimensions.WithCause(err)
		}
		return "", internal.NewInternalError("Failed to upload profile picture", err)
	}

	if u.ProfileImage != "" {
		if err := s.pictures.Remove(u.ProfileImage); err != nil {
			s.logger.Warn("failed to remove old profile picture", "user_id", userID, "path", u.ProfileImage, "error", err)
		}
	}

	publicPath, err := s.pictures.Save(userID, data)
	if err != nil {
		s.logger.Error("failed to store profile picture", "user_id", userID, "error", err)
		return "", internal.NewInternalError("Failed to upload profile picture", err)
	}

	if err := s.repo.SetProfileImage(ctx, userID, publicPath); err != nil {
		_ = s.pictures.Remove(publicPath)
		return "", s.lookupError(err, "Failed to upload profile picture")
	}

	s.logger.Info("profile picture uploaded", "user_id", userID, "path", publicPath)
	return publicPath, nil
}

func (s *Service) DeletePicture(ctx context.Context, userID int64) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return s.lookupError(err, "Failed to delete profile picture")
	}
	if u.ProfileImage == "" {
		return ErrNoPicture
	}

	if err := s.pictures.Remove(u.ProfileImage); err != nil {
		s.logger.Warn("failed to remove profile picture", "user_id", userID, "path", u.ProfileImage, "error", err)
	}
	if err := s.repo.SetProfileImage(ctx, userID, ""); err != nil {
		return s.lookupError(err, "Failed to delete profile picture")
	}

	s.logger.Info("profile picture deleted", "user_id", userID)
	return nil
}

func (s *Service) lookupError(err error, msg string) error {
	if errors.Is(err, internal.ErrUserNotFound) {
		return ErrProfileMissing
	}
	return internal.NewInternalError(msg, err)
}
