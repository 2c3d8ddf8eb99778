package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
)

// StopCategory classifies a stop on the itinerary.
type StopCategory string

const (
	StopAccommodation StopCategory = "accommodation"
	StopRestaurant    StopCategory = "restaurant"
	StopAttraction    StopCategory = "attraction"
	StopTransport     StopCategory = "transport"
	StopActivity      StopCategory = "activity"
	StopOther         StopCategory = "other"
)

// ParseStopCategory validates a raw category string at the store boundary.
func ParseStopCategory(s string) (StopCategory, error) {
	switch StopCategory(s) {
	case StopAccommodation, StopRestaurant, StopAttraction, StopTransport, StopActivity, StopOther:
		return StopCategory(s), nil
	}
	return "", fmt.Errorf("%w: unknown stop category %q", common.ErrorValidation, s)
}

// Stop is a single place on a day's itinerary. SortOrder is dense and
// 0-based within the owning Day; the store renumbers siblings on every
// insert, move and delete.
type Stop struct {
	ID            uuid.UUID    `json:"id"`
	DayID         uuid.UUID    `json:"day_id"`
	Name          string       `json:"name"`
	Lat           float64      `json:"lat"`
	Lon           float64      `json:"lon"`
	ArrivalTime   *time.Time   `json:"arrival_time,omitempty"`
	DepartureTime *time.Time   `json:"departure_time,omitempty"`
	Category      StopCategory `json:"category"`
	SortOrder     int          `json:"sort_order"`
	Visited       bool         `json:"visited"`
	VisitedAt     *time.Time   `json:"visited_at,omitempty"`
	Rating        int          `json:"rating"`
	Notes         string       `json:"notes,omitempty"`
	Address       string       `json:"address,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Website       string       `json:"website,omitempty"`
	PhotoKey      string       `json:"photo_key,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (s Stop) Validate() error {
	if s.DayID == uuid.Nil {
		return fmt.Errorf("%w: stop must belong to a day", common.ErrorValidation)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: stop name is required", common.ErrorValidation)
	}
	if _, err := ParseStopCategory(string(s.Category)); err != nil {
		return err
	}
	if s.ArrivalTime != nil && s.DepartureTime != nil && s.DepartureTime.Before(*s.ArrivalTime) {
		return fmt.Errorf("%w: stop departure before arrival", common.ErrorValidation)
	}
	if s.Rating < 0 || s.Rating > 5 {
		return fmt.Errorf("%w: stop rating must be 0..5", common.ErrorValidation)
	}
	if s.SortOrder < 0 {
		return fmt.Errorf("%w: stop sort order must not be negative", common.ErrorValidation)
	}
	return nil
}
