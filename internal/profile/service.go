// Package profile implements account registration and the profile endpoints
// that sit next to the session lifecycle.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"videohub/internal/apperr"
	"videohub/internal/logging"
	"videohub/internal/models"
	"videohub/internal/store"
)

const storeTimeout = 5 * time.Second

type Users interface {
	Exists(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateAccount(ctx context.Context, id string, upd store.AccountUpdate) (*models.User, error)
	SetAvatar(ctx context.Context, id, url string) (*models.User, error)
	SetCoverImage(ctx context.Context, id, url string) (*models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
}

// Uploader pushes a staged local file to the image host and removes it.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

type Hasher interface {
	Hash(plain string) (string, error)
}

type Service struct {
	users    Users
	uploader Uploader
	hasher   Hasher
}

func NewService(users Users, uploader Uploader, hasher Hasher) *Service {
	return &Service{users: users, uploader: uploader, hasher: hasher}
}

type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

func discard(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (models.PublicUser, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)
	l := logging.FromContext(ctx).With("svc", "profile.register", "username", username, "email", email)

	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		discard(in.AvatarPath, in.CoverImagePath)
		return models.PublicUser{}, apperr.Validation("All fields are required")
	}
	if in.AvatarPath == "" {
		discard(in.CoverImagePath)
		return models.PublicUser{}, apperr.Validation("Avatar file is required")
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	exists, err := s.users.Exists(dbCtx, username, email)
	cancel()
	if err != nil {
		discard(in.AvatarPath, in.CoverImagePath)
		l.Error("register failed", "error", err)
		return models.PublicUser{}, apperr.Internal("Something went wrong while registering the user", err)
	}
	if exists {
		discard(in.AvatarPath, in.CoverImagePath)
		return models.PublicUser{}, apperr.Conflict("User already exist")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		discard(in.AvatarPath, in.CoverImagePath)
		l.Error("register failed", "error", err)
		return models.PublicUser{}, apperr.Internal("Something went wrong while registering the user", err)
	}

	avatarURL, err := s.uploader.Upload(ctx, in.AvatarPath)
	if err != nil {
		discard(in.CoverImagePath)
		l.Error("avatar upload failed", "error", err)
		return models.PublicUser{}, apperr.Internal("Avatar upload failed", err)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.uploader.Upload(ctx, in.CoverImagePath)
		if err != nil {
			l.Warn("cover image upload failed", "error", err)
		}
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hash,
	}

	dbCtx, cancel = context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.users.Create(dbCtx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.PublicUser{}, apperr.Conflict("User already exist")
		}
		l.Error("register failed", "error", err)
		return models.PublicUser{}, apperr.Internal("Something went wrong while registering the user", err)
	}

	l.Info("user registered", "user_id", user.ID.Hex())
	return user.Public(), nil
}

func (s *Service) CurrentUser(ctx context.Context, userID string) (models.PublicUser, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, apperr.Unauthorized("Invalid Access Token")
		}
		return models.PublicUser{}, apperr.Internal("Something went wrong while fetching the user", err)
	}
	return user.Public(), nil
}

type AccountInput struct {
	FullName string
	Email    string
	Username string
}

func (s *Service) UpdateAccount(ctx context.Context, userID string, in AccountInput) (models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "profile.update_account", "user_id", userID)

	upd := store.AccountUpdate{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
	}
	if upd.FullName == "" || upd.Email == "" {
		return models.PublicUser{}, apperr.Validation("All fields are required")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.UpdateAccount(ctx, userID, upd)
	if err != nil {
		return models.PublicUser{}, s.updateError(l, err)
	}
	l.Info("account updated")
	return user.Public(), nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID, localPath string) (models.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "avatar", s.users.SetAvatar)
}

func (s *Service) UpdateCoverImage(ctx context.Context, userID, localPath string) (models.PublicUser, error) {
	return s.updateImage(ctx, userID, localPath, "coverImage", s.users.SetCoverImage)
}

type imageSetter func(ctx context.Context, id, url string) (*models.User, error)

func (s *Service) updateImage(ctx context.Context, userID, localPath, field string, set imageSetter) (models.PublicUser, error) {
	l := logging.FromContext(ctx).With("svc", "profile.update_"+strings.ToLower(field), "user_id", userID)

	if localPath == "" {
		return models.PublicUser{}, apperr.Validation(field + " file is missing")
	}

	url, err := s.uploader.Upload(ctx, localPath)
	if err != nil {
		l.Error("upload failed", "error", err)
		return models.PublicUser{}, apperr.Internal("Error while uploading "+field, err)
	}

	dbCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := set(dbCtx, userID, url)
	if err != nil {
		return models.PublicUser{}, s.updateError(l, err)
	}
	l.Info("image updated", "field", field)
	return user.Public(), nil
}

func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperr.Validation("username is missing")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	profile, err := s.users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("channel does not exist")
		}
		logging.FromContext(ctx).Error("channel profile failed", "svc", "profile.channel", "error", err)
		return nil, apperr.Internal("Something went wrong while fetching the channel", err)
	}
	return profile, nil
}

func (s *Service) updateError(l *slog.Logger, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.Unauthorized("Invalid Access Token")
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("username or email already in use")
	default:
		l.Error("update failed", "error", err)
		return apperr.Internal("Something went wrong while updating the user", err)
	}
}
