package auth

import (
	"context"
	"errors"

	"videohub/internal/models"
)

// ErrSessionSuperseded is returned when a conditional refresh-token swap
// finds that the stored value no longer equals the presented token.
var ErrSessionSuperseded = errors.New("session superseded")

// SessionStore persists the single refresh token that is valid for a user.
// An empty value means the user has no active session.
type SessionStore interface {
	// RefreshToken returns the stored value, or "" when there is none.
	RefreshToken(ctx context.Context, userID string) (string, error)
	// SetRefreshToken unconditionally replaces the stored value.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken replaces the stored value with next only if it still
	// equals expected, reporting whether the swap happened.
	SwapRefreshToken(ctx context.Context, userID, expected, next string) (bool, error)
	// ClearRefreshToken removes the stored value. Clearing an absent value is not an error.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserStore is the part of the user repository the session lifecycle needs.
// Lookups that find nothing return store.ErrNotFound.
type UserStore interface {
	FindByIdentifier(ctx context.Context, username, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Passwords hashes new passwords and verifies presented ones.
type Passwords interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}
