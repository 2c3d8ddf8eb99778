// Package domain contains the core entity graph for Tripwit: a Trip owns
// Days, Bookings, Expenses and Lists; a Day owns Stops; a Stop owns
// Comments, Links and Todos. The package has no storage or transport
// dependencies and is imported by every other internal package.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// TripStatus is the lifecycle status of a trip.
type TripStatus string

const (
	TripPlanning  TripStatus = "planning"
	TripActive    TripStatus = "active"
	TripCompleted TripStatus = "completed"
)

// ParseTripStatus validates a raw status string at the store boundary.
// Unknown values are rejected, never defaulted.
func ParseTripStatus(s string) (TripStatus, error) {
	switch TripStatus(s) {
	case TripPlanning, TripActive, TripCompleted:
		return TripStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown trip status %q", common.ErrorValidation, s)
}

// Trip is the root of the ownership graph. StartDate and EndDate are
// date-granular (midnight UTC); the day span is inclusive on both ends.
type Trip struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Destination  string     `json:"destination,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	Status       TripStatus `json:"status"`
	BudgetAmount int64      `json:"budget_amount"` // minor currency units
	BudgetCcy    string     `json:"budget_ccy,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DaySpan returns the inclusive number of calendar days between StartDate
// and EndDate.
func (t Trip) DaySpan() int {
	start := DateOnly(t.StartDate)
	end := DateOnly(t.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

// Validate rejects a trip before any mutation is applied.
func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: trip name is required", common.ErrorValidation)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("%w: trip start and end dates are required", common.ErrorValidation)
	}
	if DateOnly(t.EndDate).Before(DateOnly(t.StartDate)) {
		return fmt.Errorf("%w: trip end date before start date", common.ErrorValidation)
	}
	if _, err := ParseTripStatus(string(t.Status)); err != nil {
		return err
	}
	if t.BudgetAmount < 0 {
		return fmt.Errorf("%w: trip budget must not be negative", common.ErrorValidation)
	}
	return nil
}

// DateOnly truncates a timestamp to midnight UTC. All calendar math in the
// reconciler and the stores goes through this so that day identity does not
// depend on the wall-clock time an edit happened at.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
