package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
)

func upsertStop(ctx context.Context, q dbx.DBTX, s domain.Stop) error {
	query := `INSERT INTO stops (id, day_id, name, lat, lon, arrival_time, departure_time,
			category, sort_order, visited, visited_at, rating, notes, address, phone,
			website, photo_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			day_id = excluded.day_id,
			name = excluded.name,
			lat = excluded.lat,
			lon = excluded.lon,
			arrival_time = excluded.arrival_time,
			departure_time = excluded.departure_time,
			category = excluded.category,
			sort_order = excluded.sort_order,
			visited = excluded.visited,
			visited_at = excluded.visited_at,
			rating = excluded.rating,
			notes = excluded.notes,
			address = excluded.address,
			phone = excluded.phone,
			website = excluded.website,
			photo_key = excluded.photo_key,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		s.ID.String(), s.DayID.String(), s.Name, s.Lat, s.Lon,
		nullableTime(s.ArrivalTime), nullableTime(s.DepartureTime),
		string(s.Category), s.SortOrder, s.Visited, nullableTime(s.VisitedAt),
		s.Rating, s.Notes, s.Address, s.Phone, s.Website, s.PhotoKey,
		s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stop: %w", err)
	}
	return nil
}

const stopColumns = `id, day_id, name, lat, lon, arrival_time, departure_time, category,
	sort_order, visited, visited_at, rating, notes, address, phone, website, photo_key,
	created_at, updated_at`

func scanStop(row interface{ Scan(...any) error }) (domain.Stop, error) {
	var s domain.Stop
	var id, dayID, category string
	var arrival, departure, visitedAt sql.NullTime
	err := row.Scan(&id, &dayID, &s.Name, &s.Lat, &s.Lon, &arrival, &departure, &category,
		&s.SortOrder, &s.Visited, &visitedAt, &s.Rating, &s.Notes, &s.Address, &s.Phone,
		&s.Website, &s.PhotoKey, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stop{}, common.ErrorNotFound
	}
	if err != nil {
		return domain.Stop{}, fmt.Errorf("failed to scan stop: %w", err)
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return domain.Stop{}, fmt.Errorf("bad stop id: %w", err)
	}
	if s.DayID, err = uuid.Parse(dayID); err != nil {
		return domain.Stop{}, fmt.Errorf("bad stop day id: %w", err)
	}
	if s.Category, err = domain.ParseStopCategory(category); err != nil {
		return domain.Stop{}, err
	}
	s.ArrivalTime = timePtr(arrival)
	s.DepartureTime = timePtr(departure)
	s.VisitedAt = timePtr(visitedAt)
	return s, nil
}

func getStop(ctx context.Context, q dbx.DBTX, id uuid.UUID) (domain.Stop, error) {
	row := q.QueryRowContext(ctx, `SELECT `+stopColumns+` FROM stops WHERE id = ?`, id.String())
	return scanStop(row)
}

func listStops(ctx context.Context, q dbx.DBTX, dayID uuid.UUID) ([]domain.Stop, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+stopColumns+` FROM stops WHERE day_id = ? ORDER BY sort_order`, dayID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select stops: %w", err)
	}
	defer rows.Close()

	var result []domain.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// renumberStops rewrites sort_order densely 0..n-1 for the day, keeping
// the current relative order. Run after any stop insert/move/delete.
func renumberStops(ctx context.Context, q dbx.DBTX, dayID uuid.UUID) ([]domain.Stop, error) {
	stops, err := listStops(ctx, q, dayID)
	if err != nil {
		return nil, err
	}
	for i := range stops {
		if stops[i].SortOrder == i {
			continue
		}
		stops[i].SortOrder = i
		_, err := q.ExecContext(ctx,
			`UPDATE stops SET sort_order = ? WHERE id = ?`, i, stops[i].ID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to renumber stop: %w", err)
		}
	}
	return stops, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
