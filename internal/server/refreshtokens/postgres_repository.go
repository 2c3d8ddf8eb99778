package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kevinbuckley/tripwit/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {

	query :=
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)
		 `

	_, err := r.db.ExecContext(ctx, query, userID, token, time.Now().Add(validity))

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (string, error) {

	query :=
		`SELECT user_id FROM refresh_tokens
		 WHERE token = $1 AND expires_at > now()
		 `

	var userID string
	err := r.db.QueryRowContext(ctx, query, token).Scan(&userID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrRefreshTokenExpired
		}
		return "", fmt.Errorf("error performing sql request: %v", err)
	}

	return userID, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {

	query := `DELETE FROM refresh_tokens WHERE token = $1`

	_, err := r.db.ExecContext(ctx, query, token)

	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return nil
}
