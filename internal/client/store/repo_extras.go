package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
)

// Trip-level extras: bookings, expenses, lists and their items.

func upsertBooking(ctx context.Context, q dbx.DBTX, b domain.Booking) error {
	query := `INSERT INTO bookings (id, trip_id, kind, title, reference, date, amount,
			currency, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			kind = excluded.kind,
			title = excluded.title,
			reference = excluded.reference,
			date = excluded.date,
			amount = excluded.amount,
			currency = excluded.currency,
			notes = excluded.notes,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		b.ID.String(), b.TripID.String(), b.Kind, b.Title, b.Reference, b.Date,
		b.Amount, b.Currency, b.Notes, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert booking: %w", err)
	}
	return nil
}

func listBookings(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) ([]domain.Booking, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, trip_id, kind, title, reference, date,
		amount, currency, notes, created_at, updated_at FROM bookings
		WHERE trip_id = ? ORDER BY date, title`, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select bookings: %w", err)
	}
	defer rows.Close()

	var result []domain.Booking
	for rows.Next() {
		var b domain.Booking
		var id, tid string
		if err := rows.Scan(&id, &tid, &b.Kind, &b.Title, &b.Reference, &b.Date,
			&b.Amount, &b.Currency, &b.Notes, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if b.TripID, err = uuid.Parse(tid); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func upsertExpense(ctx context.Context, q dbx.DBTX, e domain.Expense) error {
	query := `INSERT INTO expenses (id, trip_id, title, amount, currency, date, category,
			notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			title = excluded.title,
			amount = excluded.amount,
			currency = excluded.currency,
			date = excluded.date,
			category = excluded.category,
			notes = excluded.notes,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		e.ID.String(), e.TripID.String(), e.Title, e.Amount, e.Currency, e.Date,
		e.Category, e.Notes, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert expense: %w", err)
	}
	return nil
}

func listExpenses(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) ([]domain.Expense, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, trip_id, title, amount, currency, date,
		category, notes, created_at, updated_at FROM expenses
		WHERE trip_id = ? ORDER BY date, title`, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var id, tid string
		if err := rows.Scan(&id, &tid, &e.Title, &e.Amount, &e.Currency, &e.Date,
			&e.Category, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if e.TripID, err = uuid.Parse(tid); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func upsertList(ctx context.Context, q dbx.DBTX, l domain.List) error {
	query := `INSERT INTO lists (id, trip_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			trip_id = excluded.trip_id,
			title = excluded.title,
			updated_at = excluded.updated_at`
	_, err := q.ExecContext(ctx, query,
		l.ID.String(), l.TripID.String(), l.Title, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert list: %w", err)
	}
	return nil
}

func listLists(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) ([]domain.List, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, trip_id, title, created_at, updated_at
		FROM lists WHERE trip_id = ? ORDER BY title`, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select lists: %w", err)
	}
	defer rows.Close()

	var result []domain.List
	for rows.Next() {
		var l domain.List
		var id, tid string
		if err := rows.Scan(&id, &tid, &l.Title, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if l.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if l.TripID, err = uuid.Parse(tid); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func upsertListItem(ctx context.Context, q dbx.DBTX, i domain.ListItem) error {
	query := `INSERT INTO list_items (id, list_id, title, checked, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			list_id = excluded.list_id,
			title = excluded.title,
			checked = excluded.checked,
			sort_order = excluded.sort_order`
	_, err := q.ExecContext(ctx, query,
		i.ID.String(), i.ListID.String(), i.Title, i.Checked, i.SortOrder, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert list item: %w", err)
	}
	return nil
}

func listListItems(ctx context.Context, q dbx.DBTX, listID uuid.UUID) ([]domain.ListItem, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, list_id, title, checked, sort_order, created_at
		FROM list_items WHERE list_id = ? ORDER BY sort_order`, listID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to select list items: %w", err)
	}
	defer rows.Close()

	var result []domain.ListItem
	for rows.Next() {
		var i domain.ListItem
		var id, lid string
		if err := rows.Scan(&id, &lid, &i.Title, &i.Checked, &i.SortOrder, &i.CreatedAt); err != nil {
			return nil, err
		}
		if i.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if i.ListID, err = uuid.Parse(lid); err != nil {
			return nil, err
		}
		result = append(result, i)
	}
	return result, rows.Err()
}
