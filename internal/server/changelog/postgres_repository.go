package changelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Append(ctx context.Context, records []Record) error {

	query :=
		`INSERT INTO change_log (token, scope, zone_id, user_id, author, kind, entity_id, op, payload, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		zone := ""
		if rec.ZoneID != uuid.Nil {
			zone = rec.ZoneID.String()
		}
		_, err := tx.ExecContext(ctx, query,
			string(rec.Token), string(rec.Scope), zone, rec.UserID, rec.Author,
			string(rec.Kind), rec.EntityID.String(), string(rec.Op), []byte(rec.Payload), rec.RecordedAt)
		if err != nil {
			return fmt.Errorf("error performing sql request: %v", err)
		}
	}

	return tx.Commit()
}

const entryColumns = `token, scope, zone_id, author, kind, entity_id, op, payload, recorded_at`

func scanEntry(rows *sql.Rows) (syncx.Entry, error) {

	var e syncx.Entry
	var token, scope, zone, kind, entityID, op string
	var payload []byte

	err := rows.Scan(&token, &scope, &zone, &e.Author, &kind, &entityID, &op, &payload, &e.RecordedAt)
	if err != nil {
		return syncx.Entry{}, fmt.Errorf("error scanning row: %v", err)
	}

	e.Token = syncx.Token(token)
	e.Scope = syncx.Scope(scope)
	e.Kind = domain.Kind(kind)
	e.Op = syncx.Op(op)
	e.Payload = payload

	if zone != "" {
		if e.ZoneID, err = uuid.Parse(zone); err != nil {
			return syncx.Entry{}, fmt.Errorf("error parsing zone id: %v", err)
		}
	}
	if e.EntityID, err = uuid.Parse(entityID); err != nil {
		return syncx.Entry{}, fmt.Errorf("error parsing entity id: %v", err)
	}

	return e, nil
}

func (r *PostgresRepository) ListSince(ctx context.Context, q Query) ([]syncx.Entry, error) {

	var rows *sql.Rows
	var err error

	if q.Scope == syncx.ScopeOwned {
		query := `SELECT ` + entryColumns + `
		 FROM change_log
		 WHERE scope = $1 AND user_id = $2 AND token > $3
		 ORDER BY token
		 LIMIT $4`
		rows, err = r.db.QueryContext(ctx, query, string(q.Scope), q.UserID, string(q.After), q.Limit)
	} else {
		query := `SELECT ` + entryColumns + `
		 FROM change_log
		 WHERE scope = $1 AND zone_id = ANY($2) AND token > $3
		 ORDER BY token
		 LIMIT $4`
		rows, err = r.db.QueryContext(ctx, query, string(q.Scope), q.Zones, string(q.After), q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var entries []syncx.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository) Snapshot(ctx context.Context, q Query) ([]syncx.Entry, syncx.Token, error) {

	var rows *sql.Rows
	var err error

	// The latest entry per entity carries the whole record, so it is all
	// a snapshot needs. The overall stream head is among these rows.
	if q.Scope == syncx.ScopeOwned {
		query := `SELECT DISTINCT ON (entity_id) ` + entryColumns + `
		 FROM change_log
		 WHERE scope = $1 AND user_id = $2
		 ORDER BY entity_id, token DESC`
		rows, err = r.db.QueryContext(ctx, query, string(q.Scope), q.UserID)
	} else {
		query := `SELECT DISTINCT ON (entity_id) ` + entryColumns + `
		 FROM change_log
		 WHERE scope = $1 AND zone_id = ANY($2)
		 ORDER BY entity_id, token DESC`
		rows, err = r.db.QueryContext(ctx, query, string(q.Scope), q.Zones)
	}
	if err != nil {
		return nil, "", fmt.Errorf("error performing sql request: %v", err)
	}
	defer rows.Close()

	var entries []syncx.Entry
	var head syncx.Token
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, "", err
		}
		if e.Token.After(head) {
			head = e.Token
		}
		if e.Op == syncx.OpUpsert {
			entries = append(entries, e)
		}
	}
	return entries, head, rows.Err()
}

func (r *PostgresRepository) Boundary(ctx context.Context, q Query) (syncx.Token, error) {

	keys := []string{q.UserID}
	if q.Scope == syncx.ScopeShared {
		keys = append(keys, q.Zones...)
	}

	query := `SELECT COALESCE(MAX(token), '')
	 FROM purge_boundaries
	 WHERE scope = $1 AND stream_key = ANY($2)`

	var token string
	err := r.db.QueryRowContext(ctx, query, string(q.Scope), keys).Scan(&token)
	if err != nil {
		return "", fmt.Errorf("error performing sql request: %v", err)
	}
	return syncx.Token(token), nil
}

func (r *PostgresRepository) SetBoundary(ctx context.Context, scope syncx.Scope, streamKey string, token syncx.Token) error {

	query :=
		`INSERT INTO purge_boundaries (scope, stream_key, token)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (scope, stream_key) DO UPDATE
		 SET token = GREATEST(purge_boundaries.token, EXCLUDED.token)`

	_, err := r.db.ExecContext(ctx, query, string(scope), streamKey, string(token))
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

const compactableWhere = `
	 recorded_at < $1
	 AND (op = 'delete' OR EXISTS (
	      SELECT 1 FROM change_log n
	      WHERE n.scope = e.scope AND n.entity_id = e.entity_id AND n.token > e.token))`

func (r *PostgresRepository) Compact(ctx context.Context, cutoff time.Time) error {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	boundaries :=
		`INSERT INTO purge_boundaries (scope, stream_key, token)
		 SELECT e.scope,
		        CASE WHEN e.scope = 'owned' THEN e.user_id ELSE e.zone_id END,
		        MAX(e.token)
		 FROM change_log e
		 WHERE` + compactableWhere + `
		 GROUP BY 1, 2
		 ON CONFLICT (scope, stream_key) DO UPDATE
		 SET token = GREATEST(purge_boundaries.token, EXCLUDED.token)`

	if _, err := tx.ExecContext(ctx, boundaries, cutoff); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	purge := `DELETE FROM change_log e WHERE` + compactableWhere

	if _, err := tx.ExecContext(ctx, purge, cutoff); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) PurgeZone(ctx context.Context, zoneID string) error {

	query := `DELETE FROM change_log WHERE scope = 'shared' AND zone_id = $1`

	_, err := r.db.ExecContext(ctx, query, zoneID)
	if err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}
