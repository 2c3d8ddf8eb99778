package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/dbx"
)

// Cascading deletes. Every delete of a parent runs through one of these
// inside the caller's transaction, so no orphaned child row can ever be
// observed. Remote delete entries use the same paths, which also makes
// merge-applied deletes idempotent: deleting an already-deleted subtree
// touches zero rows.

func deleteStopCascade(ctx context.Context, q dbx.DBTX, stopID uuid.UUID) error {
	id := stopID.String()
	for _, query := range []string{
		`DELETE FROM comments WHERE stop_id = ?`,
		`DELETE FROM links WHERE stop_id = ?`,
		`DELETE FROM todos WHERE stop_id = ?`,
		`DELETE FROM stops WHERE id = ?`,
	} {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade stop delete: %w", err)
		}
	}
	return nil
}

func deleteDayCascade(ctx context.Context, q dbx.DBTX, dayID uuid.UUID) error {
	id := dayID.String()
	for _, query := range []string{
		`DELETE FROM comments WHERE stop_id IN (SELECT id FROM stops WHERE day_id = ?)`,
		`DELETE FROM links WHERE stop_id IN (SELECT id FROM stops WHERE day_id = ?)`,
		`DELETE FROM todos WHERE stop_id IN (SELECT id FROM stops WHERE day_id = ?)`,
		`DELETE FROM stops WHERE day_id = ?`,
		`DELETE FROM days WHERE id = ?`,
	} {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade day delete: %w", err)
		}
	}
	return nil
}

func deleteListCascade(ctx context.Context, q dbx.DBTX, listID uuid.UUID) error {
	id := listID.String()
	for _, query := range []string{
		`DELETE FROM list_items WHERE list_id = ?`,
		`DELETE FROM lists WHERE id = ?`,
	} {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade list delete: %w", err)
		}
	}
	return nil
}

func deleteTripCascade(ctx context.Context, q dbx.DBTX, tripID uuid.UUID) error {
	id := tripID.String()
	for _, query := range []string{
		`DELETE FROM comments WHERE stop_id IN (
			SELECT s.id FROM stops s JOIN days d ON s.day_id = d.id WHERE d.trip_id = ?)`,
		`DELETE FROM links WHERE stop_id IN (
			SELECT s.id FROM stops s JOIN days d ON s.day_id = d.id WHERE d.trip_id = ?)`,
		`DELETE FROM todos WHERE stop_id IN (
			SELECT s.id FROM stops s JOIN days d ON s.day_id = d.id WHERE d.trip_id = ?)`,
		`DELETE FROM stops WHERE day_id IN (SELECT id FROM days WHERE trip_id = ?)`,
		`DELETE FROM days WHERE trip_id = ?`,
		`DELETE FROM bookings WHERE trip_id = ?`,
		`DELETE FROM expenses WHERE trip_id = ?`,
		`DELETE FROM list_items WHERE list_id IN (SELECT id FROM lists WHERE trip_id = ?)`,
		`DELETE FROM lists WHERE trip_id = ?`,
		`DELETE FROM shares WHERE trip_id = ?`,
		`DELETE FROM trips WHERE id = ?`,
	} {
		if _, err := q.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to cascade trip delete: %w", err)
		}
	}
	return nil
}
