package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Day is one calendar day of a trip. DayNumber is 1-based and contiguous
// per trip; the reconciler reassigns it whenever the trip's date range
// changes.
type Day struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Date      time.Time `json:"date"`
	DayNumber int       `json:"day_number"`
	Notes     string    `json:"notes,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d Day) Validate() error {
	if d.TripID == uuid.Nil {
		return fmt.Errorf("%w: day must belong to a trip", common.ErrorValidation)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: day date is required", common.ErrorValidation)
	}
	if d.DayNumber < 1 {
		return fmt.Errorf("%w: day number must be 1-based", common.ErrorValidation)
	}
	return nil
}
