package shares

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

const shareColumns = `id, trip_id, owner_id, zone_id, token, url, participants, resolvable_at, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, share *Share) (*Share, error) {

	participants, err := json.Marshal(share.Participants)
	if err != nil {
		return nil, fmt.Errorf("error encoding participants: %v", err)
	}

	query :=
		`INSERT INTO shares (` + shareColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err = r.db.ExecContext(ctx, query,
		share.ID.String(), share.TripID.String(), share.OwnerID, share.ZoneID.String(),
		share.Token, share.URL, participants, share.ResolvableAt, share.CreatedAt, share.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return share, nil
}

func (r *PostgresRepository) get(ctx context.Context, where string, arg ...any) (*Share, error) {

	query := `SELECT ` + shareColumns + ` FROM shares WHERE ` + where

	var s Share
	var id, tripID, zoneID string
	var participants []byte

	err := r.db.QueryRowContext(ctx, query, arg...).Scan(
		&id, &tripID, &s.OwnerID, &zoneID, &s.Token, &s.URL,
		&participants, &s.ResolvableAt, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("error parsing share id: %v", err)
	}
	if s.TripID, err = uuid.Parse(tripID); err != nil {
		return nil, fmt.Errorf("error parsing trip id: %v", err)
	}
	if s.ZoneID, err = uuid.Parse(zoneID); err != nil {
		return nil, fmt.Errorf("error parsing zone id: %v", err)
	}
	if err := json.Unmarshal(participants, &s.Participants); err != nil {
		return nil, fmt.Errorf("error decoding participants: %v", err)
	}

	return &s, nil
}

func (r *PostgresRepository) GetByTrip(ctx context.Context, ownerID string, tripID string) (*Share, error) {
	return r.get(ctx, `owner_id = $1 AND trip_id = $2`, ownerID, tripID)
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Share, error) {
	return r.get(ctx, `token = $1`, token)
}

func (r *PostgresRepository) GetByZone(ctx context.Context, zoneID string) (*Share, error) {
	return r.get(ctx, `zone_id = $1`, zoneID)
}

func (r *PostgresRepository) Update(ctx context.Context, share *Share) error {

	participants, err := json.Marshal(share.Participants)
	if err != nil {
		return fmt.Errorf("error encoding participants: %v", err)
	}

	query :=
		`UPDATE shares
		 SET url = $1, participants = $2, resolvable_at = $3, updated_at = $4
		 WHERE zone_id = $5`

	res, err := r.db.ExecContext(ctx, query,
		share.URL, participants, share.ResolvableAt, share.UpdatedAt, share.ZoneID.String())
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, zoneID string) error {

	query := `DELETE FROM shares WHERE zone_id = $1`

	res, err := r.db.ExecContext(ctx, query, zoneID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ZonesFor(ctx context.Context, userID string) ([]string, error) {

	// participants is a JSONB array of roster rows
	query :=
		`SELECT zone_id FROM shares
		 WHERE participants @> $1`

	member, err := json.Marshal([]map[string]string{{"user_id": userID}})
	if err != nil {
		return nil, fmt.Errorf("error encoding filter: %v", err)
	}

	rows, err := r.db.QueryContext(ctx, query, member)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var zones []string
	for rows.Next() {
		var zone string
		if err := rows.Scan(&zone); err != nil {
			return nil, fmt.Errorf("error scanning row: %v", err)
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}
