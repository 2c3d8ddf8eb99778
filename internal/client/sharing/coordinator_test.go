package sharing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/client/remote"
	"github.com/kevinbuckley/tripwit/internal/client/store"
	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

type fakeAuthority struct {
	remote.Authority

	createFn func(ctx context.Context, tripID uuid.UUID) (domain.Share, error)
	fetchFn  func(ctx context.Context, shareURL string) (domain.Share, error)
	acceptFn func(ctx context.Context, shareURL string) (domain.Share, error)
	purgeFn  func(ctx context.Context, zoneID uuid.UUID) error
}

func (f *fakeAuthority) CreateShare(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
	return f.createFn(ctx, tripID)
}

func (f *fakeAuthority) FetchShareMetadata(ctx context.Context, shareURL string) (domain.Share, error) {
	if f.fetchFn == nil {
		return domain.Share{URL: shareURL}, nil
	}
	return f.fetchFn(ctx, shareURL)
}

func (f *fakeAuthority) AcceptShare(ctx context.Context, shareURL string) (domain.Share, error) {
	return f.acceptFn(ctx, shareURL)
}

func (f *fakeAuthority) PurgeZone(ctx context.Context, zoneID uuid.UUID) error {
	if f.purgeFn == nil {
		return nil
	}
	return f.purgeFn(ctx, zoneID)
}

type noopFlusher struct{}

func (noopFlusher) SyncScope(ctx context.Context, scope syncx.Scope) error { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Options{Dir: t.TempDir(), UserID: "owner"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fastConfig() Config {
	return Config{RetryStep: time.Millisecond, PollInterval: time.Millisecond}
}

func makeTrip(t *testing.T, st *store.Store) domain.Trip {
	t.Helper()
	trip, _, err := st.CreateTrip(context.Background(), syncx.ScopeOwned, domain.Trip{
		Name:      "Shared trip",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return trip
}

func activeShare(tripID uuid.UUID) domain.Share {
	return domain.Share{
		ID:     uuid.New(),
		TripID: tripID,
		ZoneID: uuid.New(),
		URL:    "https://sync.example/api/shares/zone-" + tripID.String()[:8],
	}
}

func TestBeginHappyPath(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	want := activeShare(trip.ID)

	fetches := 0
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			assert.Equal(t, trip.ID, tripID)
			return want, nil
		},
		fetchFn: func(ctx context.Context, shareURL string) (domain.Share, error) {
			fetches++
			if fetches < 3 {
				// propagation lag
				return domain.Share{}, syncx.NewRemoteError(syncx.CodeNotFound, "not yet")
			}
			return want, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	got, err := c.Begin(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, 3, fetches)

	status, err := c.State(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)

	stored, err := st.ShareForTrip(context.Background(), syncx.ScopeOwned, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, want.URL, stored.URL)
}

func TestBeginRetriesTransientThenSucceeds(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	want := activeShare(trip.ID)

	creates := 0
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			creates++
			if creates <= 2 {
				return domain.Share{}, syncx.NewRemoteError(syncx.CodeThrottled, "busy")
			}
			return want, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	got, err := c.Begin(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, 3, creates)
}

func TestBeginTerminalFailsImmediately(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)

	creates := 0
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			creates++
			return domain.Share{}, syncx.NewRemoteError(syncx.CodeUnauthorized, "no")
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	_, err := c.Begin(context.Background(), trip.ID)
	require.Error(t, err)
	assert.Equal(t, 1, creates, "terminal code must not burn the retry budget")

	_, serr := st.ShareForTrip(context.Background(), syncx.ScopeOwned, trip.ID)
	assert.ErrorIs(t, serr, common.ErrorNotFound)
}

func TestBeginIdempotentWhenActive(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	saved, err := st.SaveShare(context.Background(), syncx.ScopeOwned, activeShare(trip.ID))
	require.NoError(t, err)

	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			t.Fatal("must not create a second share")
			return domain.Share{}, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	got, err := c.Begin(context.Background(), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestStaleShareSelfHeals(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	ctx := context.Background()

	// A persisted share that never got a link.
	stale := activeShare(trip.ID)
	stale.URL = ""
	stale, err := st.SaveShare(ctx, syncx.ScopeOwned, stale)
	require.NoError(t, err)

	status, err := c0(st).State(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, StateStale, status.State)

	fresh := activeShare(trip.ID)
	var purged atomic.Bool
	auth := &fakeAuthority{
		purgeFn: func(ctx context.Context, zoneID uuid.UUID) error {
			assert.Equal(t, stale.ZoneID, zoneID)
			purged.Store(true)
			return nil
		},
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			require.True(t, purged.Load(), "stale zone must be purged before recreate")
			return fresh, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	got, err := c.Begin(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.URL, got.URL)
	assert.NotEqual(t, stale.ZoneID, got.ZoneID)

	status, err = c.State(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
}

// c0 builds a coordinator whose authority must never be called.
func c0(st *store.Store) *Coordinator {
	return New(st, &fakeAuthority{}, noopFlusher{}, fastConfig(), testLogger())
}

func TestVerifyBudgetExhausted(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	share := activeShare(trip.ID)

	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			return share, nil
		},
		fetchFn: func(ctx context.Context, shareURL string) (domain.Share, error) {
			return domain.Share{}, syncx.NewRemoteError(syncx.CodeNotFound, "never propagates")
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	_, err := c.Begin(context.Background(), trip.ID)
	require.ErrorIs(t, err, ErrShareUnresolvable)
}

func TestConcurrentBeginCoalesces(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	share := activeShare(trip.ID)

	release := make(chan struct{})
	var creates atomic.Int32
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			creates.Add(1)
			<-release
			return share, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	var wg sync.WaitGroup
	results := make([]domain.Share, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Begin(context.Background(), trip.ID)
		}(i)
	}

	// Let both calls reach the registry before releasing the create.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), creates.Load(), "concurrent Begin must share one flow")
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, share.URL, results[i].URL)
	}
}

func TestCancelledFlowHasNoSideEffects(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	share := activeShare(trip.ID)

	entered := make(chan struct{})
	release := make(chan struct{})
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			close(entered)
			<-release
			return share, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())
	events := c.Subscribe()

	go func() {
		_, _ = c.Begin(context.Background(), trip.ID)
	}()
	<-entered
	c.Cancel(trip.ID)
	close(release)

	// The in-flight create finishes but its result is discarded.
	time.Sleep(100 * time.Millisecond)
	_, err := st.ShareForTrip(context.Background(), syncx.ScopeOwned, trip.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	for {
		select {
		case ev := <-events:
			assert.NotEqual(t, StateActive, ev.State, "cancelled flow must not report Active")
		default:
			return
		}
	}
}

func TestCancelledBeginReportsCancellation(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	share := activeShare(trip.ID)

	entered := make(chan struct{})
	release := make(chan struct{})
	auth := &fakeAuthority{
		createFn: func(ctx context.Context, tripID uuid.UUID) (domain.Share, error) {
			close(entered)
			<-release
			return share, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	type result struct {
		share domain.Share
		err   error
	}
	got := make(chan result, 1)
	go func() {
		s, err := c.Begin(context.Background(), trip.ID)
		got <- result{s, err}
	}()
	<-entered
	c.Cancel(trip.ID)
	close(release)

	select {
	case r := <-got:
		assert.ErrorIs(t, r.err, ErrFlowCancelled)
		assert.Equal(t, domain.Share{}, r.share, "cancelled Begin must not hand back a share")
	case <-time.After(time.Second):
		t.Fatal("Begin did not return after Cancel")
	}
}

func TestStopPurgesZoneAndLocalState(t *testing.T) {
	st := newTestStore(t)
	trip := makeTrip(t, st)
	ctx := context.Background()

	share, err := st.SaveShare(ctx, syncx.ScopeOwned, activeShare(trip.ID))
	require.NoError(t, err)

	var purgedZone uuid.UUID
	auth := &fakeAuthority{
		purgeFn: func(ctx context.Context, zoneID uuid.UUID) error {
			purgedZone = zoneID
			return nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	require.NoError(t, c.Stop(ctx, trip.ID))
	assert.Equal(t, share.ZoneID, purgedZone)

	_, err = st.ShareForTrip(ctx, syncx.ScopeOwned, trip.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	status, err := c.State(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, StateNoShare, status.State)

	// Stopping again is a no-op.
	require.NoError(t, c.Stop(ctx, trip.ID))
}

func TestAcceptJoinsSharedScope(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	shareURL := "https://sync.example/api/shares/tok42"
	joined := domain.Share{
		ID:     uuid.New(),
		TripID: uuid.New(),
		ZoneID: uuid.New(),
		URL:    shareURL,
		Participants: []domain.Participant{
			{UserID: "owner", Role: domain.RoleOwner, Permission: domain.PermissionReadWrite},
			{UserID: "guest", Role: domain.RoleParticipant, Permission: domain.PermissionReadOnly},
		},
	}
	auth := &fakeAuthority{
		acceptFn: func(ctx context.Context, gotURL string) (domain.Share, error) {
			assert.Equal(t, shareURL, gotURL)
			return joined, nil
		},
	}
	c := New(st, auth, noopFlusher{}, fastConfig(), testLogger())

	got, err := c.Accept(ctx, WrapShareURL(shareURL))
	require.NoError(t, err)
	assert.Equal(t, joined.ID, got.ID)

	stored, err := st.ShareForTrip(ctx, syncx.ScopeShared, joined.TripID)
	require.NoError(t, err)
	assert.Len(t, stored.Participants, 2)
}
