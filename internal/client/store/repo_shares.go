package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
)

// The participant roster is stored as a JSON column: it is small, always
// read and written as a whole, and replaced wholesale on merge.

func upsertShare(ctx context.Context, q dbx.DBTX, s domain.Share) error {
	roster, err := json.Marshal(s.Participants)
	if err != nil {
		return fmt.Errorf("encoding share roster: %w", err)
	}
	query := `INSERT INTO shares (id, trip_id, zone_id, url, participants, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			zone_id = excluded.zone_id,
			url = excluded.url,
			participants = excluded.participants,
			updated_at = excluded.updated_at`
	_, err = q.ExecContext(ctx, query,
		s.ID.String(), s.TripID.String(), s.ZoneID.String(), s.URL, string(roster),
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert share: %w", err)
	}
	return nil
}

func scanShare(row interface{ Scan(...any) error }) (domain.Share, error) {
	var s domain.Share
	var id, tripID, zoneID, roster string
	err := row.Scan(&id, &tripID, &zoneID, &s.URL, &roster, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Share{}, common.ErrorNotFound
	}
	if err != nil {
		return domain.Share{}, fmt.Errorf("failed to scan share: %w", err)
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return domain.Share{}, fmt.Errorf("bad share id: %w", err)
	}
	if s.TripID, err = uuid.Parse(tripID); err != nil {
		return domain.Share{}, fmt.Errorf("bad share trip id: %w", err)
	}
	if s.ZoneID, err = uuid.Parse(zoneID); err != nil {
		return domain.Share{}, fmt.Errorf("bad share zone id: %w", err)
	}
	if err := json.Unmarshal([]byte(roster), &s.Participants); err != nil {
		return domain.Share{}, fmt.Errorf("decoding share roster: %w", err)
	}
	for _, p := range s.Participants {
		if _, err := domain.ParseShareRole(string(p.Role)); err != nil {
			return domain.Share{}, err
		}
		if _, err := domain.ParseSharePermission(string(p.Permission)); err != nil {
			return domain.Share{}, err
		}
	}
	return s, nil
}

const shareColumns = `id, trip_id, zone_id, url, participants, created_at, updated_at`

func getShare(ctx context.Context, q dbx.DBTX, id uuid.UUID) (domain.Share, error) {
	row := q.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM shares WHERE id = ?`, id.String())
	return scanShare(row)
}

func getShareByTrip(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) (domain.Share, error) {
	row := q.QueryRowContext(ctx, `SELECT `+shareColumns+` FROM shares WHERE trip_id = ?`, tripID.String())
	return scanShare(row)
}

func deleteShare(ctx context.Context, q dbx.DBTX, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM shares WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return nil
}
