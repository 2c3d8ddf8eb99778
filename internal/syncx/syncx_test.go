package syncx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/domain"
)

func TestTokenSource_StrictlyIncreasing(t *testing.T) {
	src := NewTokenSource()

	prev := src.Next()
	for i := 0; i < 10000; i++ {
		next := src.Next()
		require.True(t, next.After(prev), "token %q must order after %q", next, prev)
		prev = next
	}
}

func TestToken_ZeroOrdersBeforeEverything(t *testing.T) {
	src := NewTokenSource()
	tok := src.Next()

	var zero Token
	assert.True(t, zero.IsZero())
	assert.True(t, tok.After(zero))
	assert.False(t, zero.After(tok))
}

func TestEntry_Validate(t *testing.T) {
	trip := domain.Trip{ID: uuid.New(), Name: "x", Status: domain.TripPlanning}
	good, err := UpsertEntry(ScopeOwned, "author-1", domain.KindTrip, trip.ID, trip)
	require.NoError(t, err)
	require.NoError(t, good.Validate())

	tests := []struct {
		name   string
		mutate func(*Entry)
	}{
		{"bad scope", func(e *Entry) { e.Scope = "local" }},
		{"bad kind", func(e *Entry) { e.Kind = "journal" }},
		{"bad op", func(e *Entry) { e.Op = "merge" }},
		{"nil entity id", func(e *Entry) { e.EntityID = uuid.Nil }},
		{"upsert without payload", func(e *Entry) { e.Payload = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mutate(&e)
			assert.Error(t, e.Validate())
		})
	}

	del := DeleteEntry(ScopeShared, "author-1", domain.KindStop, uuid.New())
	assert.NoError(t, del.Validate(), "delete entries carry no payload")
}

func TestRemoteError_Retryable(t *testing.T) {
	retryable := []ErrorCode{CodeThrottled, CodeTimeout, CodeConflict, CodeUnavailable}
	for _, c := range retryable {
		assert.True(t, NewRemoteError(c, "").Retryable(), string(c))
	}

	terminal := []ErrorCode{CodeInvalid, CodeUnauthorized, CodeNotFound, CodeTokenExpired}
	for _, c := range terminal {
		assert.False(t, NewRemoteError(c, "").Retryable(), string(c))
	}
}

func TestAsRemote(t *testing.T) {
	err := NewRemoteError(CodeThrottled, "busy zone %s", "z1")

	re, ok := AsRemote(err)
	require.True(t, ok)
	assert.Equal(t, CodeThrottled, re.Code)
	assert.Contains(t, re.Error(), "busy zone z1")

	_, ok = AsRemote(assert.AnError)
	assert.False(t, ok)
}
