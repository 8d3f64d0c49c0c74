package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MaturityMaxing/sportns/config"
	"github.com/MaturityMaxing/sportns/models"
	"github.com/MaturityMaxing/sportns/push"
	"github.com/MaturityMaxing/sportns/repositories"
	"github.com/MaturityMaxing/sportns/storage"
)

type UpdateProfileInput struct {
	Name       *string `json:"name,omitempty"`
	SkillLevel *int    `json:"skill_level,omitempty"`
}

// UserService covers profile reads/updates, push-token registration and
// avatar uploads.
type UserService struct {
	users    repositories.UserRepository
	uploader storage.FileUploader
	policy   config.Policy
}

func NewUserService(users repositories.UserRepository, uploader storage.FileUploader, policy config.Policy) *UserService {
	return &UserService{
		users:    users,
		uploader: uploader,
		policy:   policy,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.SkillLevel != nil {
		if !s.policy.ValidSkill(*input.SkillLevel) {
			return nil, ErrInvalidSkillLevel
		}
		user.SkillLevel = input.SkillLevel
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

// SetPushToken registers (or clears, with nil) the user's push destination
// token. Format validity is only enforced later, at delivery time.
func (s *UserService) SetPushToken(ctx context.Context, id int, token *string) error {
	if token != nil {
		trimmed := strings.TrimSpace(*token)
		if trimmed == "" {
			token = nil
		} else {
			token = &trimmed
		}
	}
	if err := s.users.UpdatePushToken(ctx, id, token); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// HasUsablePushToken reports whether the stored token would pass the
// delivery-time format check. Purely informational for the client.
func (s *UserService) HasUsablePushToken(user *models.User) bool {
	return user.PushToken != nil && push.ValidToken(*user.PushToken)
}

// UploadAvatar stores the image and records its key on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("media uploader is not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("avatars/%d%s", id, ext)

	if _, err := s.uploader.Upload(ctx, key, contentType, reader); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}
	if err := s.users.UpdateAvatarKey(ctx, id, &key); err != nil {
		return nil, err
	}
	user.AvatarKey = &key
	user.PasswordHash = ""
	s.populateAvatarURL(user)
	return user, nil
}

func (s *UserService) populateAvatarURL(user *models.User) {
	if user.AvatarKey != nil && *user.AvatarKey != "" && s.uploader != nil {
		if url := s.uploader.GetPublicURL(*user.AvatarKey); url != "" {
			user.AvatarURL = &url
		}
	}
}
