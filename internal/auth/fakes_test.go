package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"videohub/internal/models"
	"videohub/internal/store"
)

var (
	testAccessSecret  = []byte("access-secret-for-tests")
	testRefreshSecret = []byte("refresh-secret-for-tests")
)

func newTestCodec() *Codec {
	return NewCodec(
		KindConfig{Secret: testAccessSecret, TTL: 15 * time.Minute},
		KindConfig{Secret: testRefreshSecret, TTL: 24 * time.Hour},
	)
}

// memSessions is an in-memory SessionStore with a real conditional swap.
type memSessions struct {
	mu     sync.Mutex
	tokens map[string]string

	setErr  error
	swapErr error
}

func newMemSessions() *memSessions {
	return &memSessions{tokens: map[string]string{}}
}

func (m *memSessions) RefreshToken(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}

func (m *memSessions) SetRefreshToken(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.tokens[userID] = token
	return nil
}

func (m *memSessions) SwapRefreshToken(_ context.Context, userID, expected, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.swapErr != nil {
		return false, m.swapErr
	}
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

func (m *memSessions) stored(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID]
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID.Hex()] = u
	}
	return m
}

func (m *memUsers) FindByIdentifier(_ context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
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
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// plainPasswords stands in for bcrypt so tests stay fast.
type plainPasswords struct{}

func (plainPasswords) Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + plain, nil
}

func (plainPasswords) Verify(hash, plain string) bool {
	return strings.TrimPrefix(hash, "hashed:") == plain && strings.HasPrefix(hash, "hashed:")
}

func newAlice() *models.User {
	return &models.User{
		ID:           primitive.NewObjectID(),
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Doe",
		PasswordHash: "hashed:pw1",
	}
}
