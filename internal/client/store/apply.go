package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// ApplyEntries merges a batch of remote change entries into a scope file
// in one transaction. Upserts replace the row wholesale, so replaying a
// batch is idempotent. Deletes cascade the same way local deletes do, so
// a single root delete entry converges every replica. Entries written by
// this replica, and entries that fail to decode, are skipped without
// failing the batch.
func (s *Store) ApplyEntries(ctx context.Context, scope syncx.Scope, entries []syncx.Entry) error {
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		for _, e := range entries {
			if e.Author == s.author {
				continue
			}
			if err := s.applyEntry(ctx, tx, e); err != nil {
				s.log.Warn(ctx, "skipping change entry", "token", string(e.Token),
					"kind", string(e.Kind), "entity", e.EntityID.String(), "error", err)
			}
		}
		return nil
	})
}

func (s *Store) applyEntry(ctx context.Context, tx dbx.DBTX, e syncx.Entry) error {
	if e.Op == syncx.OpDelete {
		return applyDelete(ctx, tx, e.Kind, e.EntityID)
	}
	return applyUpsert(ctx, tx, e.Kind, e.Payload)
}

func applyUpsert(ctx context.Context, tx dbx.DBTX, kind domain.Kind, payload json.RawMessage) error {
	decode := func(v interface{ Validate() error }) error {
		if err := json.Unmarshal(payload, v); err != nil {
			return fmt.Errorf("decoding %s payload: %w", kind, err)
		}
		return v.Validate()
	}

	switch kind {
	case domain.KindTrip:
		var v domain.Trip
		if err := decode(&v); err != nil {
			return err
		}
		return upsertTrip(ctx, tx, v)
	case domain.KindDay:
		var v domain.Day
		if err := decode(&v); err != nil {
			return err
		}
		return upsertDay(ctx, tx, v)
	case domain.KindStop:
		var v domain.Stop
		if err := decode(&v); err != nil {
			return err
		}
		return upsertStop(ctx, tx, v)
	case domain.KindComment:
		var v domain.Comment
		if err := decode(&v); err != nil {
			return err
		}
		return upsertComment(ctx, tx, v)
	case domain.KindLink:
		var v domain.Link
		if err := decode(&v); err != nil {
			return err
		}
		return upsertLink(ctx, tx, v)
	case domain.KindTodo:
		var v domain.Todo
		if err := decode(&v); err != nil {
			return err
		}
		return upsertTodo(ctx, tx, v)
	case domain.KindBooking:
		var v domain.Booking
		if err := decode(&v); err != nil {
			return err
		}
		return upsertBooking(ctx, tx, v)
	case domain.KindExpense:
		var v domain.Expense
		if err := decode(&v); err != nil {
			return err
		}
		return upsertExpense(ctx, tx, v)
	case domain.KindList:
		var v domain.List
		if err := decode(&v); err != nil {
			return err
		}
		return upsertList(ctx, tx, v)
	case domain.KindListItem:
		var v domain.ListItem
		if err := decode(&v); err != nil {
			return err
		}
		return upsertListItem(ctx, tx, v)
	case domain.KindShare:
		var v domain.Share
		if err := json.Unmarshal(payload, &v); err != nil {
			return fmt.Errorf("decoding %s payload: %w", kind, err)
		}
		return upsertShare(ctx, tx, v)
	}
	return fmt.Errorf("unknown entity kind %q", kind)
}

func applyDelete(ctx context.Context, tx dbx.DBTX, kind domain.Kind, id uuid.UUID) error {
	switch kind {
	case domain.KindTrip:
		return deleteTripCascade(ctx, tx, id)
	case domain.KindDay:
		return deleteDayCascade(ctx, tx, id)
	case domain.KindStop:
		return deleteStopCascade(ctx, tx, id)
	case domain.KindList:
		return deleteListCascade(ctx, tx, id)
	case domain.KindShare:
		return deleteShare(ctx, tx, id)
	}
	table, ok := leafTables[kind]
	if !ok {
		return fmt.Errorf("unknown entity kind %q", kind)
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id.String())
	return err
}

// entityTables lists every entity table in child-before-parent order, used
// when a scope is rebuilt from a snapshot.
var entityTables = []string{
	"comments", "links", "todos", "list_items", "stops",
	"bookings", "expenses", "lists", "days", "shares", "trips",
}

// ReplaceScope wipes a scope's entity tables and rebuilds them from a
// full snapshot, then records the snapshot's token. Used when the saved
// history token has aged past the server's retention window. The outbox
// is left alone: local changes not yet pushed still need to go out.
func (s *Store) ReplaceScope(ctx context.Context, scope syncx.Scope, entries []syncx.Entry, tok syncx.Token) error {
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range entityTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		for _, e := range entries {
			if e.Op != syncx.OpUpsert {
				continue
			}
			if err := applyUpsert(ctx, tx, e.Kind, e.Payload); err != nil {
				s.log.Warn(ctx, "skipping snapshot entry", "kind", string(e.Kind),
					"entity", e.EntityID.String(), "error", err)
			}
		}
		return setMeta(ctx, tx, metaHistoryToken, string(tok))
	})
}
