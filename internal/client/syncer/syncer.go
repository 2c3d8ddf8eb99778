// Package syncer drives the replica store against the remote authority:
// it pushes queued local changes and merges remote change batches, one
// worker per scope. At most one merge is in flight per scope by
// construction; callers poke a worker through a buffered event channel
// and observe progress through the status subscription.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/kevinbuckley/tripwit/internal/client/remote"
	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// State is the coarse sync condition the CLI renders.
type State string

const (
	StateIdle    State = "idle"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

// Status is a point-in-time view of one scope's sync condition. Errors
// here are always retryable operationally: nothing local was lost and the
// next cycle starts from the same cursor.
type Status struct {
	Scope    syncx.Scope
	State    State
	LastSync time.Time
	LastErr  string
}

// Config bounds the sync loops. Zero values fall back to defaults.
type Config struct {
	// Interval between unprompted sync cycles.
	Interval time.Duration
	// PushBatch is the max outbox rows pushed per request.
	PushBatch int
	// Retries on transient remote codes, with linear backoff RetryStep,
	// 2*RetryStep, ...
	Retries   uint64
	RetryStep time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.PushBatch <= 0 {
		c.PushBatch = 200
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.RetryStep <= 0 {
		c.RetryStep = 2 * time.Second
	}
	return c
}

// Syncer owns one worker per scope.
type Syncer struct {
	store     *store.Store
	authority remote.Authority
	log       logging.Logger
	cfg       Config

	events map[syncx.Scope]chan struct{}

	mu     sync.Mutex
	status map[syncx.Scope]Status
	subs   []chan Status
}

// New wires a syncer; call Run to start the workers.
func New(st *store.Store, authority remote.Authority, cfg Config, log logging.Logger) *Syncer {
	s := &Syncer{
		store:     st,
		authority: authority,
		log:       log.With("module", "syncer"),
		cfg:       cfg.withDefaults(),
		events:    make(map[syncx.Scope]chan struct{}, len(syncx.Scopes)),
		status:    make(map[syncx.Scope]Status, len(syncx.Scopes)),
	}
	for _, scope := range syncx.Scopes {
		s.events[scope] = make(chan struct{}, 1)
		s.status[scope] = Status{Scope: scope, State: StateIdle}
	}
	return s
}

// Run blocks until ctx is cancelled, running one worker goroutine per
// scope plus periodic ticks.
func (s *Syncer) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, scope := range syncx.Scopes {
		wg.Add(1)
		go func(scope syncx.Scope) {
			defer wg.Done()
			s.worker(ctx, scope)
		}(scope)
	}
	wg.Wait()
}

func (s *Syncer) worker(ctx context.Context, scope syncx.Scope) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.events[scope]:
		}
		if err := s.SyncScope(ctx, scope); err != nil && ctx.Err() == nil {
			s.log.Warn(ctx, "sync cycle failed", "scope", string(scope), "error", err)
		}
	}
}

// Notify wakes the scope's worker. Non-blocking: a poke while a cycle is
// already queued coalesces into it.
func (s *Syncer) Notify(scope syncx.Scope) {
	select {
	case s.events[scope] <- struct{}{}:
	default:
	}
}

// Status returns the current condition of a scope.
func (s *Syncer) Status(scope syncx.Scope) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[scope]
}

// Subscribe returns a channel receiving every status transition. Slow
// receivers drop updates rather than stalling the workers.
func (s *Syncer) Subscribe() <-chan Status {
	ch := make(chan Status, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Syncer) setStatus(scope syncx.Scope, st Status) {
	st.Scope = scope
	s.mu.Lock()
	s.status[scope] = st
	subs := s.subs
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- st:
		default:
		}
	}
}

// SyncScope runs one full push+merge cycle for a scope.
func (s *Syncer) SyncScope(ctx context.Context, scope syncx.Scope) error {
	prev := s.Status(scope)
	s.setStatus(scope, Status{State: StateSyncing, LastSync: prev.LastSync})

	err := s.push(ctx, scope)
	if err == nil {
		err = s.merge(ctx, scope)
	}
	if err != nil {
		s.setStatus(scope, Status{State: StateError, LastSync: prev.LastSync, LastErr: err.Error()})
		return err
	}
	s.setStatus(scope, Status{State: StateIdle, LastSync: time.Now().UTC()})
	return nil
}

// push drains the outbox in commit order. Rows are dropped only after the
// authority acknowledged the batch.
func (s *Syncer) push(ctx context.Context, scope syncx.Scope) error {
	for {
		pending, err := s.store.PendingChanges(ctx, scope, s.cfg.PushBatch)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		entries := make([]syncx.Entry, len(pending))
		for i, pc := range pending {
			entries[i] = pc.Entry
		}
		err = syncx.DoTransient(ctx, s.cfg.Retries, s.cfg.RetryStep, func(ctx context.Context) error {
			_, err := s.authority.PushChanges(ctx, scope, entries)
			return err
		})
		if err != nil {
			return err
		}
		if err := s.store.DropPushed(ctx, scope, pending[len(pending)-1].Seq); err != nil {
			return err
		}
		if len(pending) < s.cfg.PushBatch {
			return nil
		}
	}
}

// merge pulls entries past the saved cursor and applies them. The cursor
// is advanced strictly after the apply transaction commits; a crash in
// between re-merges the same batch, which is harmless because apply is
// idempotent. A token_expired answer means the cursor aged past the
// authority's retention window and the scope is rebuilt from a snapshot.
func (s *Syncer) merge(ctx context.Context, scope syncx.Scope) error {
	token, err := s.store.HistoryToken(ctx, scope)
	if err != nil {
		return err
	}

	var batch remote.ChangeBatch
	err = syncx.DoTransient(ctx, s.cfg.Retries, s.cfg.RetryStep, func(ctx context.Context) error {
		var ferr error
		batch, ferr = s.authority.FetchChangesSince(ctx, scope, token)
		return ferr
	})
	if err != nil {
		if re, ok := syncx.AsRemote(err); ok && re.Code == syncx.CodeTokenExpired {
			return s.resync(ctx, scope)
		}
		return err
	}

	if len(batch.Entries) > 0 {
		if err := s.store.ApplyEntries(ctx, scope, batch.Entries); err != nil {
			return err
		}
	}
	if !batch.Next.IsZero() && batch.Next != token {
		if err := s.store.SetHistoryToken(ctx, scope, batch.Next); err != nil {
			return err
		}
	}
	return nil
}

// resync replaces the whole scope with an authority snapshot and jumps
// the cursor to the snapshot token. Unpushed outbox rows survive.
func (s *Syncer) resync(ctx context.Context, scope syncx.Scope) error {
	s.log.Info(ctx, "history token expired, full resync", "scope", string(scope))
	snap, err := s.authority.FetchSnapshot(ctx, scope)
	if err != nil {
		return err
	}
	return s.store.ReplaceScope(ctx, scope, snap.Entries, snap.Next)
}
