package changelog

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/server/config"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

type fakeMembership struct {
	zones map[string][]string // userID -> zone ids
}

func (m *fakeMembership) ZonesFor(ctx context.Context, userID string) ([]string, error) {
	return m.zones[userID], nil
}

func (m *fakeMembership) IsMember(ctx context.Context, zoneID string, userID string) (bool, error) {
	return slices.Contains(m.zones[userID], zoneID), nil
}

func newTestService(t *testing.T, m *fakeMembership) (*Service, *InMemoryRepository) {
	t.Helper()
	repo, err := NewInMemoryRepository()
	require.NoError(t, err)
	if m == nil {
		m = &fakeMembership{zones: map[string][]string{}}
	}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := &config.Config{RetentionWindow: 7 * 24 * time.Hour}
	return NewService(repo, m, cfg, log), repo
}

func mustPush(t *testing.T, ctx context.Context, s *Service, userID string, entries []syncx.Entry) []syncx.Token {
	t.Helper()
	tokens, err := s.Push(ctx, userID, entries)
	require.NoError(t, err)
	require.Len(t, tokens, len(entries))
	return tokens
}

func ownedUpsert(t *testing.T, name string) syncx.Entry {
	t.Helper()
	trip := domain.Trip{ID: uuid.New(), Name: name, StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 1), Status: domain.TripPlanning}
	e, err := syncx.UpsertEntry(syncx.ScopeOwned, "dev-1", domain.KindTrip, trip.ID, trip)
	require.NoError(t, err)
	return e
}

func sharedUpsert(t *testing.T, zone uuid.UUID, name string) syncx.Entry {
	t.Helper()
	e := ownedUpsert(t, name)
	e.Scope = syncx.ScopeShared
	e.ZoneID = zone
	return e
}

func TestPushAssignsIncreasingTokens(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	mustPush(t, ctx, s, "u1", []syncx.Entry{ownedUpsert(t, "a"), ownedUpsert(t, "b")})

	entries, next, err := s.Changes(ctx, "u1", syncx.ScopeOwned, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[1].Token.After(entries[0].Token))
	assert.Equal(t, entries[1].Token, next)
}

func TestChangesAreScopedToUser(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	mustPush(t, ctx, s, "u1", []syncx.Entry{ownedUpsert(t, "mine")})
	mustPush(t, ctx, s, "u2", []syncx.Entry{ownedUpsert(t, "theirs")})

	entries, _, err := s.Changes(ctx, "u1", syncx.ScopeOwned, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestChangesResumeFromCursor(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	mustPush(t, ctx, s, "u1", []syncx.Entry{ownedUpsert(t, "a")})
	_, cursor, err := s.Changes(ctx, "u1", syncx.ScopeOwned, "", 0)
	require.NoError(t, err)

	mustPush(t, ctx, s, "u1", []syncx.Entry{ownedUpsert(t, "b")})

	entries, next, err := s.Changes(ctx, "u1", syncx.ScopeOwned, cursor, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, next.After(cursor))

	// caught up: empty batch, cursor unchanged
	entries, again, err := s.Changes(ctx, "u1", syncx.ScopeOwned, next, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, next, again)
}

func TestSharedPushRequiresMembership(t *testing.T) {
	zone := uuid.New()
	m := &fakeMembership{zones: map[string][]string{"member": {zone.String()}}}
	s, _ := newTestService(t, m)
	ctx := context.Background()

	mustPush(t, ctx, s, "member", []syncx.Entry{sharedUpsert(t, zone, "ok")})

	_, err := s.Push(ctx, "stranger", []syncx.Entry{sharedUpsert(t, zone, "nope")})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestSharedChangesSpanZones(t *testing.T) {
	z1, z2 := uuid.New(), uuid.New()
	m := &fakeMembership{zones: map[string][]string{
		"alice": {z1.String(), z2.String()},
		"bob":   {z2.String()},
	}}
	s, _ := newTestService(t, m)
	ctx := context.Background()

	mustPush(t, ctx, s, "alice", []syncx.Entry{sharedUpsert(t, z1, "one"), sharedUpsert(t, z2, "two")})

	entries, _, err := s.Changes(ctx, "alice", syncx.ScopeShared, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, _, err = s.Changes(ctx, "bob", syncx.ScopeShared, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCompactionExpiresOldCursors(t *testing.T) {
	s, repo := newTestService(t, nil)
	ctx := context.Background()

	first := ownedUpsert(t, "v1")
	second := first
	second.Payload = []byte(`{"id":"` + first.EntityID.String() + `","name":"v2"}`)
	mustPush(t, ctx, s, "u1", []syncx.Entry{first})
	mustPush(t, ctx, s, "u1", []syncx.Entry{second})

	// everything is older than the cutoff; the superseded first entry goes
	require.NoError(t, repo.Compact(ctx, time.Now().Add(time.Minute)))

	_, _, err := s.Changes(ctx, "u1", syncx.ScopeOwned, "", 0)
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	// snapshot recovers: latest upsert plus a cursor past the boundary
	entries, head, err := s.Snapshot(ctx, "u1", syncx.ScopeOwned)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, string(entries[0].Payload), "v2")

	got, _, err := s.Changes(ctx, "u1", syncx.ScopeOwned, head, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompactionKeepsLatestUpsert(t *testing.T) {
	s, repo := newTestService(t, nil)
	ctx := context.Background()

	mustPush(t, ctx, s, "u1", []syncx.Entry{ownedUpsert(t, "keep")})
	require.NoError(t, repo.Compact(ctx, time.Now().Add(time.Minute)))

	// sole upsert per entity is never compacted away
	entries, _, err := s.Changes(ctx, "u1", syncx.ScopeOwned, "", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSnapshotDropsDeletedEntities(t *testing.T) {
	s, _ := newTestService(t, nil)
	ctx := context.Background()

	e := ownedUpsert(t, "doomed")
	mustPush(t, ctx, s, "u1", []syncx.Entry{e})
	mustPush(t, ctx, s, "u1", []syncx.Entry{syncx.DeleteEntry(syncx.ScopeOwned, "dev-1", domain.KindTrip, e.EntityID)})

	entries, head, err := s.Snapshot(ctx, "u1", syncx.ScopeOwned)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.False(t, head.IsZero())
}

func TestInvalidateSharedCursorForcesResync(t *testing.T) {
	zone := uuid.New()
	m := &fakeMembership{zones: map[string][]string{"alice": {zone.String()}}}
	s, _ := newTestService(t, m)
	ctx := context.Background()

	mustPush(t, ctx, s, "alice", []syncx.Entry{sharedUpsert(t, zone, "x")})
	_, cursor, err := s.Changes(ctx, "alice", syncx.ScopeShared, "", 0)
	require.NoError(t, err)

	require.NoError(t, s.InvalidateSharedCursor(ctx, []string{"alice"}))

	_, _, err = s.Changes(ctx, "alice", syncx.ScopeShared, cursor, 0)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestPurgeZoneRemovesEntries(t *testing.T) {
	zone := uuid.New()
	m := &fakeMembership{zones: map[string][]string{"alice": {zone.String()}}}
	s, _ := newTestService(t, m)
	ctx := context.Background()

	mustPush(t, ctx, s, "alice", []syncx.Entry{sharedUpsert(t, zone, "x")})
	require.NoError(t, s.PurgeZone(ctx, zone.String()))

	entries, _, err := s.Changes(ctx, "alice", syncx.ScopeShared, "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPushRejectsMalformedEntry(t *testing.T) {
	s, _ := newTestService(t, nil)
	e := ownedUpsert(t, "a")
	e.Op = "replace"
	_, err := s.Push(context.Background(), "u1", []syncx.Entry{e})
	assert.ErrorIs(t, err, common.ErrorValidation)
}
