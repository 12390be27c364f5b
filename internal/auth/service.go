package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"videohub/internal/apperr"
	"videohub/internal/logging"
	"videohub/internal/models"
	"videohub/internal/store"
)

const storeTimeout = 5 * time.Second

const (
	msgUnauthorizedRequest = "Unauthorized request"
	msgInvalidRefresh      = "Invalid refresh token"
	msgRefreshUsed         = "refresh token is expired or used"
	msgInvalidAccess       = "Invalid Access Token"
	msgTokenGeneration     = "Something went wrong while generating refresh and access token"
)

type Options struct {
	// RevokeOnReuse clears the stored refresh token when a superseded one is presented.
	RevokeOnReuse bool
}

// Service drives the session lifecycle: login, refresh rotation, access
// checks, logout and password change.
type Service struct {
	users     UserStore
	sessions  SessionStore
	passwords Passwords
	codec     *Codec
	issuer    *Issuer
	opts      Options
}

func NewService(users UserStore, sessions SessionStore, passwords Passwords, codec *Codec, opts Options) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		codec:     codec,
		issuer:    NewIssuer(codec, sessions),
		opts:      opts,
	}
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User models.PublicUser
	Pair Pair
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username, "email", email)

	if username == "" && email == "" {
		return nil, apperr.Validation("username or email is required")
	}
	if in.Password == "" {
		return nil, apperr.Validation("password is required")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.FindByIdentifier(ctx, username, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("login failed", "reason", "user does not exist")
			return nil, apperr.InvalidCredentials("user does not exist")
		}
		l.Error("login failed", "error", err)
		return nil, apperr.Internal("Something went wrong while logging in", err)
	}

	if !s.passwords.Verify(user.PasswordHash, in.Password) {
		l.Warn("login failed", "reason", "invalid password")
		return nil, apperr.InvalidCredentials("Invalid user credentials")
	}

	pair, err := s.issuer.IssuePair(ctx, user.ID.Hex())
	if err != nil {
		l.Error("login failed", "error", err)
		return nil, apperr.Internal(msgTokenGeneration, err)
	}

	l.Info("login succeeded", "user_id", user.ID.Hex())
	return &LoginResult{User: user.Public(), Pair: pair}, nil
}

// Refresh exchanges a refresh token for a new pair. Each refresh token
// succeeds at most once; later presentations are rejected as used.
func (s *Service) Refresh(ctx context.Context, presented string) (Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	presented = strings.TrimSpace(presented)
	if presented == "" {
		return Pair{}, apperr.Unauthorized(msgUnauthorizedRequest)
	}

	claims, err := s.codec.Verify(KindRefresh, presented)
	if err != nil {
		l.Warn("refresh rejected", "reason", err.Error())
		return Pair{}, apperr.Unauthorized(msgInvalidRefresh)
	}
	userID := claims.Subject
	l = l.With("user_id", userID)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("refresh rejected", "reason", "subject not found")
			return Pair{}, apperr.Unauthorized(msgInvalidRefresh)
		}
		l.Error("refresh failed", "error", err)
		return Pair{}, apperr.Internal("Something went wrong while refreshing the session", err)
	}

	current, err := s.sessions.RefreshToken(ctx, userID)
	if err != nil {
		l.Error("refresh failed", "error", err)
		return Pair{}, apperr.Internal("Something went wrong while refreshing the session", err)
	}
	if current != presented {
		return Pair{}, s.rejectReuse(ctx, l, userID)
	}

	pair, err := s.issuer.RotatePair(ctx, userID, presented)
	if err != nil {
		if errors.Is(err, ErrSessionSuperseded) {
			return Pair{}, s.rejectReuse(ctx, l, userID)
		}
		l.Error("refresh failed", "error", err)
		return Pair{}, apperr.Internal(msgTokenGeneration, err)
	}

	l.Info("refresh token rotated")
	return pair, nil
}

func (s *Service) rejectReuse(ctx context.Context, l *slog.Logger, userID string) error {
	l.Warn("refresh rejected", "reason", "token superseded", "revoke", s.opts.RevokeOnReuse)
	if s.opts.RevokeOnReuse {
		if err := s.sessions.ClearRefreshToken(ctx, userID); err != nil {
			l.Error("revoke after reuse failed", "error", err)
		}
	}
	return apperr.Unauthorized(msgRefreshUsed)
}

// Authenticate verifies an access token and returns its subject.
// The session store is not consulted.
func (s *Service) Authenticate(accessToken string) (string, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return "", apperr.Unauthorized(msgUnauthorizedRequest)
	}
	claims, err := s.codec.Verify(KindAccess, accessToken)
	if err != nil {
		return "", apperr.Unauthorized(msgInvalidAccess)
	}
	return claims.Subject, nil
}

// Logout ends the user's session. Calling it without an active session succeeds.
func (s *Service) Logout(ctx context.Context, userID string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", userID)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.sessions.ClearRefreshToken(ctx, userID); err != nil {
		l.Error("logout failed", "error", err)
		return apperr.Internal("Something went wrong while logging out", err)
	}
	l.Info("logout succeeded")
	return nil
}

// ChangePassword replaces the password hash after checking the old password.
// The active session is left as is.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	if oldPassword == "" || newPassword == "" {
		return apperr.Validation("oldPassword and newPassword are required")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorized(msgInvalidAccess)
		}
		l.Error("change password failed", "error", err)
		return apperr.Internal("Something went wrong while changing password", err)
	}

	if !s.passwords.Verify(user.PasswordHash, oldPassword) {
		l.Warn("change password failed", "reason", "invalid old password")
		return apperr.InvalidCredentials("Invalid old password")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		l.Error("change password failed", "error", err)
		return apperr.Internal("Something went wrong while changing password", err)
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		l.Error("change password failed", "error", err)
		return apperr.Internal("Something went wrong while changing password", err)
	}

	l.Info("password changed")
	return nil
}
