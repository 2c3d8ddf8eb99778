package changelog

import (
	"context"
	"time"

	"github.com/kevinbuckley/tripwit/internal/syncx"
)

type Repository interface {
	Append(ctx context.Context, records []Record) error
	// ListSince returns entries strictly after q.After in token order,
	// at most q.Limit of them.
	ListSince(ctx context.Context, q Query) ([]syncx.Entry, error)
	// Snapshot returns the latest surviving upsert per entity in the
	// queried streams plus the highest token observed, so a client can
	// rebuild a scope and resume incremental fetches from there.
	Snapshot(ctx context.Context, q Query) ([]syncx.Entry, syncx.Token, error)
	// Boundary returns the highest token ever compacted away from the
	// queried streams. A cursor at or below it can no longer be served
	// incrementally.
	Boundary(ctx context.Context, q Query) (syncx.Token, error)
	SetBoundary(ctx context.Context, scope syncx.Scope, streamKey string, token syncx.Token) error
	// Compact drops entries recorded before cutoff that carry no state a
	// snapshot still needs: deletes, and upserts superseded by a newer
	// entry for the same entity. Boundaries are advanced accordingly.
	Compact(ctx context.Context, cutoff time.Time) error
	PurgeZone(ctx context.Context, zoneID string) error
}
