// Package plan implements the day-range reconciler: given a trip whose
// start or end date changed, it recomputes the calendar-day sequence,
// reusing existing days whose date is still in range and dropping the rest.
// The package is pure; applying a Result to storage is the store's job.
package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/domain"
)

// Result is the outcome of a reconciliation. Days is the complete new day
// sequence in ascending date order with DayNumber reassigned 1..N; Dropped
// holds the days whose date fell out of range and whose stops must be
// cascade-deleted by the store.
type Result struct {
	Days    []domain.Day
	Dropped []domain.Day
}

// Reconcile recomputes the day sequence for trip after a date-range edit.
//
// A day whose calendar date is still covered by the new range keeps its
// identity (ID, notes, location) and therefore its stops; dates new to the
// range get fresh empty days. Runs in O(max(len(oldDays), span)): one pass
// to index old days by date, one pass over the new range.
func Reconcile(trip domain.Trip, oldDays []domain.Day) Result {
	start := domain.DateOnly(trip.StartDate)
	span := trip.DaySpan()

	byDate := make(map[time.Time]domain.Day, len(oldDays))
	for _, d := range oldDays {
		byDate[domain.DateOnly(d.Date)] = d
	}

	now := time.Now().UTC()
	days := make([]domain.Day, 0, span)
	for i := 0; i < span; i++ {
		date := start.AddDate(0, 0, i)
		day, ok := byDate[date]
		if ok {
			delete(byDate, date)
		} else {
			day = domain.Day{
				ID:        uuid.New(),
				TripID:    trip.ID,
				Date:      date,
				CreatedAt: now,
			}
		}
		day.DayNumber = i + 1
		day.UpdatedAt = now
		days = append(days, day)
	}

	// whatever is left in the index fell out of range
	dropped := make([]domain.Day, 0, len(byDate))
	for _, d := range oldDays {
		if _, gone := byDate[domain.DateOnly(d.Date)]; gone {
			dropped = append(dropped, d)
		}
	}

	return Result{Days: days, Dropped: dropped}
}
