package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// Booking is a reservation (flight, hotel, rental, ...) attached to a trip.
type Booking struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Kind      string    `json:"kind,omitempty"`
	Title     string    `json:"title"`
	Reference string    `json:"reference,omitempty"`
	Date      time.Time `json:"date"`
	Amount    int64     `json:"amount"` // minor currency units
	Currency  string    `json:"currency,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b Booking) Validate() error {
	if b.TripID == uuid.Nil {
		return fmt.Errorf("%w: booking must belong to a trip", common.ErrorValidation)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: booking title is required", common.ErrorValidation)
	}
	if b.Amount < 0 {
		return fmt.Errorf("%w: booking amount must not be negative", common.ErrorValidation)
	}
	return nil
}

// Expense is a recorded cost attached to a trip.
type Expense struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"` // minor currency units
	Currency  string    `json:"currency,omitempty"`
	Date      time.Time `json:"date"`
	Category  string    `json:"category,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Expense) Validate() error {
	if e.TripID == uuid.Nil {
		return fmt.Errorf("%w: expense must belong to a trip", common.ErrorValidation)
	}
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: expense title is required", common.ErrorValidation)
	}
	if e.Amount < 0 {
		return fmt.Errorf("%w: expense amount must not be negative", common.ErrorValidation)
	}
	return nil
}

// List is a packing list or checklist attached to a trip.
type List struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l List) Validate() error {
	if l.TripID == uuid.Nil {
		return fmt.Errorf("%w: list must belong to a trip", common.ErrorValidation)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: list title is required", common.ErrorValidation)
	}
	return nil
}

// ListItem is one entry of a List.
type ListItem struct {
	ID        uuid.UUID `json:"id"`
	ListID    uuid.UUID `json:"list_id"`
	Title     string    `json:"title"`
	Checked   bool      `json:"checked"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (i ListItem) Validate() error {
	if i.ListID == uuid.Nil {
		return fmt.Errorf("%w: list item must belong to a list", common.ErrorValidation)
	}
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("%w: list item title is required", common.ErrorValidation)
	}
	return nil
}
