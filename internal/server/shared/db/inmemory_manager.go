package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kevinbuckley/tripwit/internal/server/changelog"
	"github.com/kevinbuckley/tripwit/internal/server/refreshtokens"
	"github.com/kevinbuckley/tripwit/internal/server/shares"
	"github.com/kevinbuckley/tripwit/internal/server/users"
)

type InMemoryRepositoryManager struct {
	users         users.Repository
	refreshTokens refreshtokens.Repository
	changeLog     changelog.Repository
	shares        shares.Repository
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) ChangeLog() changelog.Repository {
	return m.changeLog
}

func (m *InMemoryRepositoryManager) Shares() shares.Repository {
	return m.shares
}

func NewInMemoryRepositoryManager() (RepositoryManager, error) {

	refreshTokens, err := refreshtokens.NewInMemoryRepository()
	if err != nil {
		return nil, fmt.Errorf("refresh token repo creation error: %w", err)
	}

	changeLog, err := changelog.NewInMemoryRepository()
	if err != nil {
		return nil, fmt.Errorf("change log repo creation error: %w", err)
	}

	shareRepo, err := shares.NewInMemoryRepository()
	if err != nil {
		return nil, fmt.Errorf("share repo creation error: %w", err)
	}

	return &InMemoryRepositoryManager{
		users:         users.NewInMemoryRepository(),
		refreshTokens: refreshTokens,
		changeLog:     changeLog,
		shares:        shareRepo,
	}, nil
}
