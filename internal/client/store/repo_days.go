package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
)

func upsertDay(ctx context.Context, q dbx.DBTX, d domain.Day) error {
	query := `INSERT INTO days (id, trip_id, date, day_number, notes, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			date = excluded.date,
			day_number = excluded.day_number,
			notes = excluded.notes,
			location = excluded.location,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		d.ID.String(), d.TripID.String(), d.Date, d.DayNumber, d.Notes, d.Location,
		d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert day: %w", err)
	}
	return nil
}

const dayColumns = `id, trip_id, date, day_number, notes, location, created_at, updated_at`

func scanDay(row interface{ Scan(...any) error }) (domain.Day, error) {
	var d domain.Day
	var id, tripID string
	err := row.Scan(&id, &tripID, &d.Date, &d.DayNumber, &d.Notes, &d.Location,
		&d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Day{}, common.ErrorNotFound
	}
	if err != nil {
		return domain.Day{}, fmt.Errorf("failed to scan day: %w", err)
	}
	if d.ID, err = uuid.Parse(id); err != nil {
		return domain.Day{}, fmt.Errorf("bad day id: %w", err)
	}
	if d.TripID, err = uuid.Parse(tripID); err != nil {
		return domain.Day{}, fmt.Errorf("bad day trip id: %w", err)
	}
	return d, nil
}

func getDay(ctx context.Context, q dbx.DBTX, id uuid.UUID) (domain.Day, error) {
	row := q.QueryRowContext(ctx, `SELECT `+dayColumns+` FROM days WHERE id = ?`, id.String())
	return scanDay(row)
}

func listDays(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) ([]domain.Day, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+dayColumns+` FROM days WHERE trip_id = ? ORDER BY day_number`, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select days: %w", err)
	}
	defer rows.Close()

	var result []domain.Day
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}
