package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/kevinbuckley/tripwit/internal/common"
)

type storedToken struct {
	userID    string
	expiresAt time.Time
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]storedToken
}

func NewInMemoryRepository() (*InMemoryRepository, error) {
	return &InMemoryRepository{tokens: make(map[string]storedToken)}, nil
}

func (r *InMemoryRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = storedToken{userID: userID, expiresAt: time.Now().Add(validity)}
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[token]
	if !ok || time.Now().After(t.expiresAt) {
		return "", common.ErrRefreshTokenExpired
	}
	return t.userID, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}
