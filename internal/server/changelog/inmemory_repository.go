package changelog

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// InMemoryRepository backs service tests and local development. Records
// are held in token order; tokens are minted strictly increasing, so
// append order is already sorted.
type InMemoryRepository struct {
	mu         sync.RWMutex
	records    []Record
	boundaries map[string]syncx.Token
}

func NewInMemoryRepository() (*InMemoryRepository, error) {
	return &InMemoryRepository{boundaries: make(map[string]syncx.Token)}, nil
}

func streamKey(rec Record) string {
	if rec.Scope == syncx.ScopeOwned {
		return rec.UserID
	}
	return rec.ZoneID.String()
}

func boundaryKey(scope syncx.Scope, key string) string {
	return string(scope) + "/" + key
}

func (r *InMemoryRepository) Append(ctx context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, records...)
	return nil
}

func (r *InMemoryRepository) matches(rec Record, q Query) bool {
	if rec.Scope != q.Scope {
		return false
	}
	if q.Scope == syncx.ScopeOwned {
		return rec.UserID == q.UserID
	}
	return slices.Contains(q.Zones, rec.ZoneID.String())
}

func (r *InMemoryRepository) ListSince(ctx context.Context, q Query) ([]syncx.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []syncx.Entry
	for _, rec := range r.records {
		if !r.matches(rec, q) || !rec.Token.After(q.After) {
			continue
		}
		entries = append(entries, rec.Entry)
		if q.Limit > 0 && len(entries) == q.Limit {
			break
		}
	}
	return entries, nil
}

func (r *InMemoryRepository) Snapshot(ctx context.Context, q Query) ([]syncx.Entry, syncx.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	latest := make(map[uuid.UUID]syncx.Entry)
	var order []uuid.UUID
	var head syncx.Token
	for _, rec := range r.records {
		if !r.matches(rec, q) {
			continue
		}
		if _, seen := latest[rec.EntityID]; !seen {
			order = append(order, rec.EntityID)
		}
		latest[rec.EntityID] = rec.Entry
		if rec.Token.After(head) {
			head = rec.Token
		}
	}

	var entries []syncx.Entry
	for _, id := range order {
		if e := latest[id]; e.Op == syncx.OpUpsert {
			entries = append(entries, e)
		}
	}
	return entries, head, nil
}

func (r *InMemoryRepository) Boundary(ctx context.Context, q Query) (syncx.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := []string{q.UserID}
	if q.Scope == syncx.ScopeShared {
		keys = append(keys, q.Zones...)
	}

	var max syncx.Token
	for _, key := range keys {
		if tok := r.boundaries[boundaryKey(q.Scope, key)]; tok.After(max) {
			max = tok
		}
	}
	return max, nil
}

func (r *InMemoryRepository) SetBoundary(ctx context.Context, scope syncx.Scope, streamKey string, token syncx.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := boundaryKey(scope, streamKey)
	if token.After(r.boundaries[key]) {
		r.boundaries[key] = token
	}
	return nil
}

func (r *InMemoryRepository) Compact(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	newest := make(map[uuid.UUID]syncx.Token)
	for _, rec := range r.records {
		newest[rec.EntityID] = rec.Token
	}

	kept := r.records[:0]
	for _, rec := range r.records {
		superseded := newest[rec.EntityID].After(rec.Token)
		if rec.RecordedAt.Before(cutoff) && (rec.Op == syncx.OpDelete || superseded) {
			key := boundaryKey(rec.Scope, streamKey(rec))
			if rec.Token.After(r.boundaries[key]) {
				r.boundaries[key] = rec.Token
			}
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return nil
}

func (r *InMemoryRepository) PurgeZone(ctx context.Context, zoneID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.Scope == syncx.ScopeShared && rec.ZoneID.String() == zoneID {
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return nil
}
