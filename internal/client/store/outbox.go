package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// The outbox records local mutations in commit order, in the same
// transaction as the mutation itself. The pusher drains it to the
// authority asynchronously; local reads never wait for the push.

// PendingChange is one queued local mutation.
type PendingChange struct {
	Seq   int64
	Entry syncx.Entry
}

// zoneFor resolves the share zone covering an entity, or empty when its
// trip carries no share. It must run inside the mutation transaction,
// before any rows are removed, so delete entries still resolve.
func zoneFor(ctx context.Context, q dbx.DBTX, kind domain.Kind, entityID uuid.UUID) (string, error) {
	tripID, err := tripIDFor(ctx, q, domain.Ref{Kind: kind, ID: entityID})
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	share, err := getShareByTrip(ctx, q, tripID)
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return share.ZoneID.String(), nil
}

func enqueueUpsert(ctx context.Context, q dbx.DBTX, kind domain.Kind, entityID uuid.UUID, entity any) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encoding outbox payload: %w", err)
	}
	zone, err := zoneFor(ctx, q, kind, entityID)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO outbox (kind, entity_id, op, payload, zone_id, recorded_at) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		string(kind), entityID.String(), string(syncx.OpUpsert), string(payload), zone)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox upsert: %w", err)
	}
	return nil
}

func enqueueDelete(ctx context.Context, q dbx.DBTX, kind domain.Kind, entityID uuid.UUID) error {
	zone, err := zoneFor(ctx, q, kind, entityID)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO outbox (kind, entity_id, op, payload, zone_id, recorded_at) VALUES (?, ?, ?, '', ?, CURRENT_TIMESTAMP)`,
		string(kind), entityID.String(), string(syncx.OpDelete), zone)
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox delete: %w", err)
	}
	return nil
}

// PendingChanges returns up to limit queued changes for a scope in commit
// order, already shaped as change-log entries authored by this device.
func (s *Store) PendingChanges(ctx context.Context, scope syncx.Scope, limit int) ([]PendingChange, error) {
	rows, err := s.dbs[scope].QueryContext(ctx,
		`SELECT seq, kind, entity_id, op, payload, zone_id, recorded_at FROM outbox ORDER BY seq LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox: %w", err)
	}
	defer rows.Close()

	var result []PendingChange
	for rows.Next() {
		var pc PendingChange
		var kind, entityID, op, payload, zone string
		if err := rows.Scan(&pc.Seq, &kind, &entityID, &op, &payload, &zone, &pc.Entry.RecordedAt); err != nil {
			return nil, err
		}
		k, err := domain.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		eid, err := uuid.Parse(entityID)
		if err != nil {
			return nil, fmt.Errorf("bad outbox entity id: %w", err)
		}
		if zone != "" {
			if pc.Entry.ZoneID, err = uuid.Parse(zone); err != nil {
				return nil, fmt.Errorf("bad outbox zone id: %w", err)
			}
		}
		pc.Entry.Scope = scope
		pc.Entry.Author = s.author
		pc.Entry.Kind = k
		pc.Entry.EntityID = eid
		pc.Entry.Op = syncx.Op(op)
		if payload != "" {
			pc.Entry.Payload = json.RawMessage(payload)
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

// DropPushed removes outbox rows up to and including seq, once the
// authority has acknowledged them.
func (s *Store) DropPushed(ctx context.Context, scope syncx.Scope, seq int64) error {
	_, err := s.dbs[scope].ExecContext(ctx, `DELETE FROM outbox WHERE seq <= ?`, seq)
	if err != nil {
		return fmt.Errorf("failed to drop pushed outbox rows: %w", err)
	}
	return nil
}
