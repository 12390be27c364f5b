package handlers

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videohub/internal/models"
	"videohub/internal/store"
)

type memSessions struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (m *memSessions) RefreshToken(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

func (m *memSessions) SetRefreshToken(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
	return nil
}

func (m *memSessions) SwapRefreshToken(_ context.Context, userID, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expected == "" || m.tokens[userID] != expected {
		return false, nil
	}
	m.tokens[userID] = next
	return true, nil
}

func (m *memSessions) ClearRefreshToken(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
}

func (m *memUsers) FindByIdentifier(_ context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type plainPasswords struct{}

func (plainPasswords) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (plainPasswords) Verify(hash, plain string) bool {
	return strings.HasPrefix(hash, "hashed:") && strings.TrimPrefix(hash, "hashed:") == plain
}

func seedAlice() (*memUsers, string) {
	alice := &models.User{
		ID:           primitive.NewObjectID(),
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Doe",
		PasswordHash: "hashed:pw1",
	}
	return &memUsers{byID: map[string]*models.User{alice.ID.Hex(): alice}}, alice.ID.Hex()
}
