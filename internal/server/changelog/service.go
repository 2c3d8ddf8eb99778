package changelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

const (
	defaultPageSize = 500
	compactEvery    = time.Hour
)

// Membership answers which share zones an account currently belongs to.
// Implemented by the shares service.
type Membership interface {
	ZonesFor(ctx context.Context, userID string) ([]string, error)
	IsMember(ctx context.Context, zoneID string, userID string) (bool, error)
}

// Service is the change-log authority. It assigns tokens to pushed
// entries, serves incremental reads and snapshots, and compacts history
// older than the retention window.
type Service struct {
	repo       Repository
	membership Membership
	tokens     *syncx.TokenSource
	retention  time.Duration
	log        logging.Logger

	compactMu   sync.Mutex
	lastCompact time.Time
}

func NewService(repo Repository, membership Membership, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		repo:       repo,
		membership: membership,
		tokens:     syncx.NewTokenSource(),
		retention:  cfg.RetentionWindow,
		log:        log,
	}
}

// Push validates and appends a batch of entries on behalf of userID,
// returning the assigned tokens in batch order. Shared-scope entries
// require current membership of the target zone. Whatever tokens the
// client set are discarded.
func (s *Service) Push(ctx context.Context, userID string, entries []syncx.Entry) ([]syncx.Token, error) {

	records := make([]Record, 0, len(entries))
	tokens := make([]syncx.Token, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		if e.Scope == syncx.ScopeShared {
			if e.ZoneID == uuid.Nil {
				return nil, fmt.Errorf("%w: shared entry has no zone", common.ErrorValidation)
			}
			ok, err := s.membership.IsMember(ctx, e.ZoneID.String(), userID)
			if err != nil {
				return nil, common.ErrorInternal
			}
			if !ok {
				return nil, common.ErrorUnauthorized
			}
		}
		e.Token = s.tokens.Next()
		tokens = append(tokens, e.Token)
		records = append(records, Record{Entry: e, UserID: userID})
	}

	if err := s.repo.Append(ctx, records); err != nil {
		s.log.Error(ctx, "append failed", "user", userID, "error", err)
		return nil, common.ErrorInternal
	}

	s.maybeCompact(ctx)
	return tokens, nil
}

// Changes serves the incremental stream for one scope. It returns the
// entries after the given cursor and the cursor to resume from. When the
// cursor predates compacted history the caller gets ErrTokenExpired and
// must fall back to a snapshot.
func (s *Service) Changes(ctx context.Context, userID string, scope syncx.Scope, after syncx.Token, limit int) ([]syncx.Entry, syncx.Token, error) {

	q, err := s.query(ctx, userID, scope, after, limit)
	if err != nil {
		return nil, "", err
	}

	boundary, err := s.repo.Boundary(ctx, q)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if boundary.After(after) {
		return nil, "", common.ErrTokenExpired
	}

	entries, err := s.repo.ListSince(ctx, q)
	if err != nil {
		s.log.Error(ctx, "list failed", "user", userID, "scope", scope, "error", err)
		return nil, "", common.ErrorInternal
	}

	next := after
	if n := len(entries); n > 0 {
		next = entries[n-1].Token
	}
	return entries, next, nil
}

// Snapshot serves a full rebuild of one scope: the latest upsert per
// surviving entity plus the cursor to resume incremental fetches from.
func (s *Service) Snapshot(ctx context.Context, userID string, scope syncx.Scope) ([]syncx.Entry, syncx.Token, error) {

	q, err := s.query(ctx, userID, scope, "", 0)
	if err != nil {
		return nil, "", err
	}

	entries, head, err := s.repo.Snapshot(ctx, q)
	if err != nil {
		s.log.Error(ctx, "snapshot failed", "user", userID, "scope", scope, "error", err)
		return nil, "", common.ErrorInternal
	}

	// An empty or fully compacted stream still needs a cursor past the
	// compaction boundary, otherwise the next fetch expires again.
	boundary, err := s.repo.Boundary(ctx, q)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	if boundary.After(head) {
		head = boundary
	}
	return entries, head, nil
}

// InvalidateSharedCursor forces the given accounts to rebuild their
// shared scope from a snapshot on their next fetch. Used when a zone is
// purged or a participant is dropped from a roster, since an incremental
// stream cannot express "this zone is gone".
func (s *Service) InvalidateSharedCursor(ctx context.Context, userIDs []string) error {
	tok := s.tokens.Next()
	for _, id := range userIDs {
		if err := s.repo.SetBoundary(ctx, syncx.ScopeShared, id, tok); err != nil {
			return common.ErrorInternal
		}
	}
	return nil
}

// PurgeZone removes every entry of a share zone from the log.
func (s *Service) PurgeZone(ctx context.Context, zoneID string) error {
	if err := s.repo.PurgeZone(ctx, zoneID); err != nil {
		s.log.Error(ctx, "zone purge failed", "zone", zoneID, "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *Service) query(ctx context.Context, userID string, scope syncx.Scope, after syncx.Token, limit int) (Query, error) {
	if _, err := syncx.ParseScope(string(scope)); err != nil {
		return Query{}, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	q := Query{Scope: scope, UserID: userID, After: after, Limit: limit}
	if scope == syncx.ScopeShared {
		zones, err := s.membership.ZonesFor(ctx, userID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return Query{}, common.ErrorInternal
		}
		q.Zones = zones
	}
	return q, nil
}

func (s *Service) maybeCompact(ctx context.Context) {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()
	if time.Since(s.lastCompact) < compactEvery {
		return
	}
	s.lastCompact = time.Now()
	if err := s.repo.Compact(ctx, time.Now().Add(-s.retention)); err != nil {
		s.log.Warn(ctx, "compaction failed", "error", err)
	}
}
