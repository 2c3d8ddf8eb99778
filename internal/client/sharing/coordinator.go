// Package sharing drives the per-trip share lifecycle against the remote
// authority:
//
//	NoShare -> Creating -> AwaitingAssignment -> Verifying -> Active
//	Active  -> Stale -> (purge) -> Creating ...   self-heal
//	Active  -> Stopping -> Purged
//
// One flow runs per trip at a time: concurrent Begin calls coalesce into
// the in-flight flow, and a cancelled flow lets its remote calls finish
// but discards their results.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/client/remote"
	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// FlowState is a trip's position in the share lifecycle.
type FlowState string

const (
	StateNoShare            FlowState = "noShare"
	StateCreating           FlowState = "creating"
	StateAwaitingAssignment FlowState = "awaitingAssignment"
	StateVerifying          FlowState = "verifying"
	StateActive             FlowState = "active"
	StateStale              FlowState = "stale"
	StateStopping           FlowState = "stopping"
	StatePurged             FlowState = "purged"
	StateFailed             FlowState = "failed"
)

// ErrShareUnresolvable is returned when the authority never made the
// share link resolvable within the verification budget.
var ErrShareUnresolvable = errors.New("share link did not become resolvable")

// ErrFlowCancelled is returned to waiters of a flow that was dismissed by
// Cancel or superseded by Stop before it finished.
var ErrFlowCancelled = errors.New("share flow cancelled")

// Flusher pushes pending local writes before a share is created, so the
// zone the authority copies is current.
type Flusher interface {
	SyncScope(ctx context.Context, scope syncx.Scope) error
}

// Config bounds the share flows. Zero values fall back to defaults.
type Config struct {
	// CreateRetries retries of CreateShare/PurgeZone on transient codes,
	// linear backoff RetryStep, 2*RetryStep, ...
	CreateRetries uint64
	RetryStep     time.Duration
	// AssignAttempts polls for URL assignment, VerifyAttempts polls for
	// external resolvability, both PollInterval apart.
	AssignAttempts int
	VerifyAttempts int
	PollInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.CreateRetries == 0 {
		c.CreateRetries = 3
	}
	if c.RetryStep <= 0 {
		c.RetryStep = 2 * time.Second
	}
	if c.AssignAttempts <= 0 {
		c.AssignAttempts = 8
	}
	if c.VerifyAttempts <= 0 {
		c.VerifyAttempts = 8
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	return c
}

// Event is one observed state transition.
type Event struct {
	TripID uuid.UUID
	State  FlowState
	Share  domain.Share
	Err    error
}

// Status is the answer to a State query.
type Status struct {
	State FlowState
	Share domain.Share
}

type flow struct {
	tripID     uuid.UUID
	generation uint64
	state      FlowState
	share      domain.Share
	err        error
	done       chan struct{}
}

// Coordinator owns the per-trip share flows.
type Coordinator struct {
	store     *store.Store
	authority remote.Authority
	flusher   Flusher
	log       logging.Logger
	cfg       Config

	mu    sync.Mutex
	flows map[uuid.UUID]*flow
	gens  map[uuid.UUID]uint64
	subs  []chan Event
}

// New wires a coordinator.
func New(st *store.Store, authority remote.Authority, flusher Flusher, cfg Config, log logging.Logger) *Coordinator {
	return &Coordinator{
		store:     st,
		authority: authority,
		flusher:   flusher,
		log:       log.With("module", "sharing"),
		cfg:       cfg.withDefaults(),
		flows:     make(map[uuid.UUID]*flow),
		gens:      make(map[uuid.UUID]uint64),
	}
}

// Subscribe returns a channel receiving state transitions. Slow receivers
// drop events rather than stalling the flows.
func (c *Coordinator) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// State reports a trip's current share condition. Staleness is detected
// lazily here: a persisted share that never obtained a resolvable link is
// Stale and will be healed by the next Begin.
func (c *Coordinator) State(ctx context.Context, tripID uuid.UUID) (Status, error) {
	c.mu.Lock()
	if f, ok := c.flows[tripID]; ok {
		st := Status{State: f.state, Share: f.share}
		c.mu.Unlock()
		return st, nil
	}
	c.mu.Unlock()

	share, err := c.store.ShareForTrip(ctx, syncx.ScopeOwned, tripID)
	if errors.Is(err, common.ErrorNotFound) {
		return Status{State: StateNoShare}, nil
	}
	if err != nil {
		return Status{}, err
	}
	if !share.Resolvable() {
		return Status{State: StateStale, Share: share}, nil
	}
	return Status{State: StateActive, Share: share}, nil
}

// Begin starts (or joins) the share flow for a trip and blocks until it
// finishes or ctx is done. A trip that already holds a resolvable share
// returns it immediately; a stale share is purged and recreated.
func (c *Coordinator) Begin(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
	if _, err := c.store.Trip(ctx, syncx.ScopeOwned, tripID); err != nil {
		return domain.Share{}, err
	}

	existing, err := c.store.ShareForTrip(ctx, syncx.ScopeOwned, tripID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return domain.Share{}, err
	}
	heal := err == nil && !existing.Resolvable()
	if err == nil && existing.Resolvable() {
		return existing, nil
	}

	c.mu.Lock()
	if f, ok := c.flows[tripID]; ok {
		// Coalesce into the in-flight flow.
		c.mu.Unlock()
		return c.wait(ctx, f)
	}
	c.gens[tripID]++
	f := &flow{
		tripID:     tripID,
		generation: c.gens[tripID],
		state:      StateCreating,
		done:       make(chan struct{}),
	}
	c.flows[tripID] = f
	c.mu.Unlock()

	c.publish(f, StateCreating, domain.Share{}, nil)

	go c.runCreate(context.WithoutCancel(ctx), f, existing, heal)

	return c.wait(ctx, f)
}

func (c *Coordinator) wait(ctx context.Context, f *flow) (domain.Share, error) {
	select {
	case <-ctx.Done():
		return domain.Share{}, ctx.Err()
	case <-f.done:
		return f.share, f.err
	}
}

// Cancel dismisses the in-flight flow for a trip. Remote calls already
// started run to completion but their results are discarded.
func (c *Coordinator) Cancel(tripID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[tripID]++
	delete(c.flows, tripID)
}

// alive reports whether f is still the current flow for its trip.
func (c *Coordinator) alive(f *flow) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[f.tripID] == f.generation
}

// publish moves f to state and fans the transition out, unless the flow
// has been cancelled in the meantime.
func (c *Coordinator) publish(f *flow, state FlowState, share domain.Share, err error) {
	c.mu.Lock()
	if c.gens[f.tripID] != f.generation {
		// A superseded flow must not report success to its waiters.
		f.state = StateFailed
		f.err = ErrFlowCancelled
		c.mu.Unlock()
		return
	}
	f.state = state
	f.share = share
	f.err = err
	subs := c.subs
	c.mu.Unlock()

	ev := Event{TripID: f.tripID, State: state, Share: share, Err: err}
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// finish resolves the flow and unblocks every waiter.
func (c *Coordinator) finish(f *flow, state FlowState, share domain.Share, err error) {
	c.publish(f, state, share, err)
	c.mu.Lock()
	if c.flows[f.tripID] == f {
		delete(c.flows, f.tripID)
	}
	c.mu.Unlock()
	close(f.done)
}

func (c *Coordinator) runCreate(ctx context.Context, f *flow, stale domain.Share, heal bool) {
	if heal {
		c.log.Info(ctx, "healing stale share", "trip", f.tripID.String())
		if err := c.purge(ctx, stale); err != nil {
			c.finish(f, StateFailed, domain.Share{}, err)
			return
		}
		if !c.alive(f) {
			c.finish(f, StateFailed, domain.Share{}, ErrFlowCancelled)
			return
		}
	}

	// The zone the authority copies must hold the trip's latest state.
	if err := c.flusher.SyncScope(ctx, syncx.ScopeOwned); err != nil {
		c.finish(f, StateFailed, domain.Share{}, fmt.Errorf("flushing local changes: %w", err))
		return
	}

	var share domain.Share
	err := syncx.DoTransient(ctx, c.cfg.CreateRetries, c.cfg.RetryStep, func(ctx context.Context) error {
		var cerr error
		share, cerr = c.authority.CreateShare(ctx, f.tripID)
		return cerr
	})
	if err != nil {
		c.finish(f, StateFailed, domain.Share{}, err)
		return
	}
	if !c.alive(f) {
		c.finish(f, StateFailed, domain.Share{}, ErrFlowCancelled)
		return
	}

	// The authority assigns the link out of band; poll until it shows up.
	if share.URL == "" {
		c.publish(f, StateAwaitingAssignment, share, nil)
		share, err = c.pollAssignment(ctx, f)
		if err != nil {
			c.finish(f, StateFailed, domain.Share{}, err)
			return
		}
	}
	if !c.alive(f) {
		c.finish(f, StateFailed, domain.Share{}, ErrFlowCancelled)
		return
	}

	// Assignment is not resolvability: collaborators can only open the
	// link once the authority has propagated it.
	c.publish(f, StateVerifying, share, nil)
	if err := c.pollResolvable(ctx, share.URL); err != nil {
		c.finish(f, StateFailed, domain.Share{}, err)
		return
	}
	if !c.alive(f) {
		c.finish(f, StateFailed, domain.Share{}, ErrFlowCancelled)
		return
	}

	saved, err := c.store.SaveShare(ctx, syncx.ScopeOwned, share)
	if err != nil {
		c.finish(f, StateFailed, domain.Share{}, err)
		return
	}
	c.finish(f, StateActive, saved, nil)
}

func (c *Coordinator) pollAssignment(ctx context.Context, f *flow) (domain.Share, error) {
	for i := 0; i < c.cfg.AssignAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return domain.Share{}, ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}
		share, err := c.authority.CreateShare(ctx, f.tripID)
		if err != nil {
			if re, ok := syncx.AsRemote(err); ok && re.Retryable() {
				continue
			}
			return domain.Share{}, err
		}
		if share.URL != "" {
			return share, nil
		}
	}
	return domain.Share{}, ErrShareUnresolvable
}

func (c *Coordinator) pollResolvable(ctx context.Context, shareURL string) error {
	for i := 0; i < c.cfg.VerifyAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.PollInterval):
			}
		}
		_, err := c.authority.FetchShareMetadata(ctx, shareURL)
		if err == nil {
			return nil
		}
		if re, ok := syncx.AsRemote(err); ok {
			if re.Code == syncx.CodeNotFound || re.Retryable() {
				continue // not propagated yet
			}
		}
		return err
	}
	return ErrShareUnresolvable
}

// purge removes a share's zone remotely and every local trace of it.
func (c *Coordinator) purge(ctx context.Context, share domain.Share) error {
	err := syncx.DoTransient(ctx, c.cfg.CreateRetries, c.cfg.RetryStep, func(ctx context.Context) error {
		return c.authority.PurgeZone(ctx, share.ZoneID)
	})
	if err != nil {
		if re, ok := syncx.AsRemote(err); !ok || re.Code != syncx.CodeNotFound {
			return err
		}
		// Zone already gone remotely; finish the local cleanup.
	}
	if derr := c.store.DeleteShare(ctx, syncx.ScopeOwned, share.ID); derr != nil && !errors.Is(derr, common.ErrorNotFound) {
		return derr
	}
	return nil
}

// Stop ends sharing for a trip: the remote zone is purged, local share
// state removed, and any shared-scope copy of the trip dropped so no view
// keeps referencing entities that no longer exist.
func (c *Coordinator) Stop(ctx context.Context, tripID uuid.UUID) error {
	share, err := c.store.ShareForTrip(ctx, syncx.ScopeOwned, tripID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil // idempotent
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.gens[tripID]++ // dismiss any in-flight create
	delete(c.flows, tripID)
	f := &flow{tripID: tripID, generation: c.gens[tripID], state: StateStopping, done: make(chan struct{})}
	c.flows[tripID] = f
	c.mu.Unlock()
	c.publish(f, StateStopping, share, nil)

	if err := c.purge(ctx, share); err != nil {
		c.finish(f, StateFailed, share, err)
		return err
	}
	if err := c.store.RemoveSharedTrip(ctx, tripID); err != nil {
		c.finish(f, StateFailed, share, err)
		return err
	}
	c.finish(f, StatePurged, domain.Share{}, nil)
	return nil
}

// Accept joins a share from a wrapped deep link: the inner URL is
// unwrapped, the authority adds this user to the roster, and the share is
// recorded in the shared scope. The shared trip itself arrives through
// the next shared-scope merge.
func (c *Coordinator) Accept(ctx context.Context, wrappedLink string) (domain.Share, error) {
	shareURL, err := UnwrapShareURL(wrappedLink)
	if err != nil {
		return domain.Share{}, err
	}
	var share domain.Share
	err = syncx.DoTransient(ctx, c.cfg.CreateRetries, c.cfg.RetryStep, func(ctx context.Context) error {
		var aerr error
		share, aerr = c.authority.AcceptShare(ctx, shareURL)
		return aerr
	})
	if err != nil {
		return domain.Share{}, err
	}
	return c.store.SaveShare(ctx, syncx.ScopeShared, share)
}

// UpdateRoster persists a roster or permission change on the authority
// and mirrors it locally. Permission checks downstream read the stored
// roster, so a flip here applies to every descendant immediately.
func (c *Coordinator) UpdateRoster(ctx context.Context, share domain.Share) (domain.Share, error) {
	saved, err := c.authority.PersistShare(ctx, share)
	if err != nil {
		return domain.Share{}, err
	}
	return c.store.SaveShare(ctx, syncx.ScopeOwned, saved)
}
