package users

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// InMemoryRepository backs service tests and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byLogin map[string]*User
	byID    map[string]*User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byLogin: make(map[string]*User),
		byID:    make(map[string]*User),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byLogin[user.Login]; exists {
		return nil, common.ErrorValidation
	}
	user.ID = uuid.NewString()
	r.byLogin[user.Login] = user
	r.byID[user.ID] = user
	return user, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func (r *InMemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}
