package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kevinbuckley/tripwit/internal/server/changelog"
	"github.com/kevinbuckley/tripwit/internal/server/migrations"
	"github.com/kevinbuckley/tripwit/internal/server/refreshtokens"
	"github.com/kevinbuckley/tripwit/internal/server/shares"
	"github.com/kevinbuckley/tripwit/internal/server/users"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	users         users.Repository
	refreshTokens refreshtokens.Repository
	changeLog     changelog.Repository
	shares        shares.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *PostgresRepositoryManager) ChangeLog() changelog.Repository {
	return m.changeLog
}

func (m *PostgresRepositoryManager) Shares() shares.Repository {
	return m.shares
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	refreshTokens, err := refreshtokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("refresh token repo creation error: %w", err)
	}

	changeLog, err := changelog.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("change log repo creation error: %w", err)
	}

	shareRepo, err := shares.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("share repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		users:         users.NewPostgresRepository(db),
		refreshTokens: refreshTokens,
		changeLog:     changeLog,
		shares:        shareRepo,
	}

	err = m.RunMigrations(context.Background())
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
