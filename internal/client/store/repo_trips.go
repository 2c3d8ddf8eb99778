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

// upsertTrip replaces the whole trip row. Both local saves and remote
// merge-applies go through here, which is what makes merge idempotent and
// last-writer-wins at the record level.
func upsertTrip(ctx context.Context, q dbx.DBTX, t domain.Trip) error {
	query := `INSERT INTO trips (id, name, destination, start_date, end_date, status,
			budget_amount, budget_ccy, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			destination = excluded.destination,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			status = excluded.status,
			budget_amount = excluded.budget_amount,
			budget_ccy = excluded.budget_ccy,
			notes = excluded.notes,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		t.ID.String(), t.Name, t.Destination, t.StartDate, t.EndDate, string(t.Status),
		t.BudgetAmount, t.BudgetCcy, t.Notes, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert trip: %w", err)
	}
	return nil
}

func scanTrip(row interface{ Scan(...any) error }) (domain.Trip, error) {
	var t domain.Trip
	var id, status string
	err := row.Scan(&id, &t.Name, &t.Destination, &t.StartDate, &t.EndDate, &status,
		&t.BudgetAmount, &t.BudgetCcy, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, common.ErrorNotFound
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("failed to scan trip: %w", err)
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return domain.Trip{}, fmt.Errorf("bad trip id: %w", err)
	}
	if t.Status, err = domain.ParseTripStatus(status); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}

const tripColumns = `id, name, destination, start_date, end_date, status,
	budget_amount, budget_ccy, notes, created_at, updated_at`

func getTrip(ctx context.Context, q dbx.DBTX, id uuid.UUID) (domain.Trip, error) {
	row := q.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id.String())
	return scanTrip(row)
}

func listTrips(ctx context.Context, q dbx.DBTX) ([]domain.Trip, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY start_date, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select trips: %w", err)
	}
	defer rows.Close()

	var result []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}
