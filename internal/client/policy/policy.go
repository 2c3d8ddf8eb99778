// Package policy answers "may the current user edit this entity". The
// decision is made per call by walking the entity up to its owning trip
// and reading that trip's share roster; nothing is cached, so a
// permission flip on the roster applies to every descendant immediately.
package policy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// Policy decides edit access against the replica store.
type Policy struct {
	store *store.Store
	log   logging.Logger
}

// New wires a policy over the store; the user identity comes from the
// store itself.
func New(st *store.Store, log logging.Logger) *Policy {
	return &Policy{store: st, log: log.With("module", "policy")}
}

// CanEdit reports whether the current user may mutate the entity. The
// entity is resolved to its trip in the owned scope first, then the
// shared scope. Unresolvable ownership fails closed: an entity we cannot
// attribute to a trip is never editable.
func (p *Policy) CanEdit(ctx context.Context, ref domain.Ref) bool {
	for _, scope := range syncx.Scopes {
		tripID, err := p.store.TripIDFor(ctx, scope, ref)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			p.log.Warn(ctx, "ownership resolution failed", "kind", string(ref.Kind),
				"entity", ref.ID.String(), "error", err)
			return false
		}
		return p.canEditTrip(ctx, scope, tripID)
	}
	return false
}

func (p *Policy) canEditTrip(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) bool {
	share, err := p.store.ShareForTrip(ctx, scope, tripID)
	if errors.Is(err, common.ErrorNotFound) {
		// Unshared content in the owned scope is always the user's own.
		// A shared-scope trip without its share record is unattributable.
		return scope == syncx.ScopeOwned
	}
	if err != nil {
		p.log.Warn(ctx, "share lookup failed", "trip", tripID.String(), "error", err)
		return false
	}

	userID := p.store.UserID()
	if share.IsOwner(userID) {
		return true
	}
	perm, onRoster := share.PermissionFor(userID)
	if !onRoster {
		return false
	}
	return perm == domain.PermissionReadWrite
}
