package policy

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStore(t *testing.T, userID string) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Dir: t.TempDir(), UserID: userID}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// buildTree creates a trip with one day, one stop, and one comment in the
// given scope, returning refs for every level of the graph.
func buildTree(t *testing.T, st *store.Store, scope syncx.Scope) (domain.Trip, []domain.Ref) {
	t.Helper()
	ctx := context.Background()
	trip, days, err := st.CreateTrip(ctx, scope, domain.Trip{
		Name:      "Policy trip",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	stop, err := st.AddStop(ctx, scope, domain.Stop{DayID: days[0].ID, Name: "Plaza"})
	require.NoError(t, err)
	comment, err := st.AddComment(ctx, scope, domain.Comment{StopID: stop.ID, Body: "note"})
	require.NoError(t, err)
	list, err := st.AddList(ctx, scope, domain.List{TripID: trip.ID, Title: "Packing"})
	require.NoError(t, err)

	refs := []domain.Ref{
		{Kind: domain.KindTrip, ID: trip.ID},
		{Kind: domain.KindDay, ID: days[0].ID},
		{Kind: domain.KindStop, ID: stop.ID},
		{Kind: domain.KindComment, ID: comment.ID},
		{Kind: domain.KindList, ID: list.ID},
	}
	return trip, refs
}

func TestUnsharedOwnedContentIsEditable(t *testing.T) {
	st := newTestStore(t, "me")
	p := New(st, testLogger())
	_, refs := buildTree(t, st, syncx.ScopeOwned)

	for _, ref := range refs {
		assert.True(t, p.CanEdit(context.Background(), ref), string(ref.Kind))
	}
}

func TestOwnerEditsSharedTrip(t *testing.T) {
	st := newTestStore(t, "owner")
	p := New(st, testLogger())
	trip, refs := buildTree(t, st, syncx.ScopeOwned)

	_, err := st.SaveShare(context.Background(), syncx.ScopeOwned, domain.Share{
		TripID: trip.ID, ZoneID: uuid.New(), URL: "https://s.example/x",
		Participants: []domain.Participant{
			{UserID: "owner", Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
			{UserID: "guest", Role: domain.RoleParticipant, Permission: domain.PermissionReadOnly},
		},
	})
	require.NoError(t, err)

	for _, ref := range refs {
		assert.True(t, p.CanEdit(context.Background(), ref), string(ref.Kind))
	}
}

func TestParticipantPermissionGovernsEveryDescendant(t *testing.T) {
	st := newTestStore(t, "guest")
	p := New(st, testLogger())
	ctx := context.Background()

	trip, refs := buildTree(t, st, syncx.ScopeShared)
	share, err := st.SaveShare(ctx, syncx.ScopeShared, domain.Share{
		TripID: trip.ID, ZoneID: uuid.New(), URL: "https://s.example/x",
		Participants: []domain.Participant{
			{UserID: "owner", Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
			{UserID: "guest", Role: domain.RoleParticipant, Permission: domain.PermissionReadOnly},
		},
	})
	require.NoError(t, err)

	for _, ref := range refs {
		assert.False(t, p.CanEdit(ctx, ref), "readOnly: %s", ref.Kind)
	}

	// Flip the permission: every descendant becomes editable at once.
	share.Participants[1].Permission = domain.PermissionReadWrite
	_, err = st.SaveShare(ctx, syncx.ScopeShared, share)
	require.NoError(t, err)

	for _, ref := range refs {
		assert.True(t, p.CanEdit(ctx, ref), "readWrite: %s", ref.Kind)
	}
}

func TestOffRosterUserCannotEdit(t *testing.T) {
	st := newTestStore(t, "stranger")
	p := New(st, testLogger())
	ctx := context.Background()

	trip, refs := buildTree(t, st, syncx.ScopeShared)
	_, err := st.SaveShare(ctx, syncx.ScopeShared, domain.Share{
		TripID: trip.ID, ZoneID: uuid.New(), URL: "https://s.example/x",
		Participants: []domain.Participant{
			{UserID: "owner", Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
		},
	})
	require.NoError(t, err)

	for _, ref := range refs {
		assert.False(t, p.CanEdit(ctx, ref), string(ref.Kind))
	}
}

func TestDetachedEntityFailsClosed(t *testing.T) {
	st := newTestStore(t, "me")
	p := New(st, testLogger())

	assert.False(t, p.CanEdit(context.Background(), domain.Ref{Kind: domain.KindStop, ID: uuid.New()}))
	assert.False(t, p.CanEdit(context.Background(), domain.Ref{Kind: domain.KindTrip, ID: uuid.New()}))
}

func TestSharedTripWithoutShareRecordFailsClosed(t *testing.T) {
	st := newTestStore(t, "me")
	p := New(st, testLogger())

	_, refs := buildTree(t, st, syncx.ScopeShared)
	for _, ref := range refs {
		assert.False(t, p.CanEdit(context.Background(), ref), string(ref.Kind))
	}
}
