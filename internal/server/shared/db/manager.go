package db

import (
	"context"
	"database/sql"

	"github.com/kevinbuckley/tripwit/internal/server/changelog"
	"github.com/kevinbuckley/tripwit/internal/server/refreshtokens"
	"github.com/kevinbuckley/tripwit/internal/server/shares"
	"github.com/kevinbuckley/tripwit/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	ChangeLog() changelog.Repository
	Shares() shares.Repository
}
