package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinbuckley/tripwit/internal/common"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validTrip() Trip {
	return Trip{
		ID:          uuid.New(),
		Name:        "Japan 2026",
		Destination: "Tokyo",
		StartDate:   date(2026, 4, 1),
		EndDate:     date(2026, 4, 10),
		Status:      TripPlanning,
		BudgetCcy:   "EUR",
	}
}

func TestTrip_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Trip)
		ok     bool
	}{
		{"valid", func(*Trip) {}, true},
		{"blank name", func(tr *Trip) { tr.Name = "   " }, false},
		{"end before start", func(tr *Trip) { tr.EndDate = date(2026, 3, 30) }, false},
		{"same day", func(tr *Trip) { tr.EndDate = tr.StartDate }, true},
		{"negative budget", func(tr *Trip) { tr.BudgetAmount = -1 }, false},
		{"unknown status", func(tr *Trip) { tr.Status = "archived" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := validTrip()
			tc.mutate(&tr)
			err := tr.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, common.ErrorValidation)
			}
		})
	}
}

func TestTrip_DaySpan(t *testing.T) {
	tr := validTrip()
	assert.Equal(t, 10, tr.DaySpan())

	tr.EndDate = tr.StartDate
	assert.Equal(t, 1, tr.DaySpan())

	// day identity must not depend on edit wall-clock time
	tr.StartDate = time.Date(2026, 4, 1, 23, 50, 0, 0, time.UTC)
	tr.EndDate = time.Date(2026, 4, 2, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, 2, tr.DaySpan())
}

func TestStop_Validate(t *testing.T) {
	arr := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	dep := arr.Add(-time.Hour)

	s := Stop{
		ID:       uuid.New(),
		DayID:    uuid.New(),
		Name:     "Senso-ji",
		Category: StopAttraction,
	}
	require.NoError(t, s.Validate())

	s.ArrivalTime = &arr
	s.DepartureTime = &dep
	assert.ErrorIs(t, s.Validate(), common.ErrorValidation, "departure before arrival")

	s.DepartureTime = nil
	s.Rating = 6
	assert.ErrorIs(t, s.Validate(), common.ErrorValidation)

	s.Rating = 5
	s.Category = "museum"
	assert.ErrorIs(t, s.Validate(), common.ErrorValidation)
}

func TestParseEnums_RejectUnknown(t *testing.T) {
	_, err := ParseTripStatus("paused")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = ParseStopCategory("")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = ParseShareRole("admin")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = ParseSharePermission("write")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = ParseKind("photo")
	assert.ErrorIs(t, err, common.ErrorValidation)

	p, err := ParseSharePermission("readWrite")
	require.NoError(t, err)
	assert.Equal(t, PermissionReadWrite, p)
}

func TestShare_RosterHelpers(t *testing.T) {
	s := Share{
		ID:     uuid.New(),
		TripID: uuid.New(),
		Participants: []Participant{
			{UserID: "alice", Role: RoleOwner, Permission: PermissionReadWrite},
			{UserID: "bob", Role: RoleParticipant, Permission: PermissionReadOnly},
		},
	}

	assert.True(t, s.IsOwner("alice"))
	assert.False(t, s.IsOwner("bob"))

	p, ok := s.PermissionFor("bob")
	require.True(t, ok)
	assert.Equal(t, PermissionReadOnly, p)

	_, ok = s.PermissionFor("mallory")
	assert.False(t, ok)

	assert.False(t, s.Resolvable())
	s.URL = "https://sync.tripwit.dev/shares/abc"
	assert.True(t, s.Resolvable())
}
