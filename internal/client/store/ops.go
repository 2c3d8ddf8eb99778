package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinbuckley/tripwit/internal/common"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/domain"
	"github.com/kevinbuckley/tripwit/internal/plan"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

// High-level mutations. Each validates its input first (nothing is ever
// partially applied), then runs the row changes and the matching outbox
// rows in a single transaction on the scope file.

// CreateTrip persists a new trip and materializes its day sequence.
func (s *Store) CreateTrip(ctx context.Context, scope syncx.Scope, trip domain.Trip) (domain.Trip, []domain.Day, error) {
	now := time.Now().UTC()
	if trip.ID == uuid.Nil {
		trip.ID = uuid.New()
	}
	if trip.Status == "" {
		trip.Status = domain.TripPlanning
	}
	trip.StartDate = domain.DateOnly(trip.StartDate)
	trip.EndDate = domain.DateOnly(trip.EndDate)
	trip.CreatedAt = now
	trip.UpdatedAt = now

	if err := trip.Validate(); err != nil {
		return domain.Trip{}, nil, err
	}

	res := plan.Reconcile(trip, nil)

	err := s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsertTrip(ctx, tx, trip); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, tx, domain.KindTrip, trip.ID, trip); err != nil {
			return err
		}
		for _, d := range res.Days {
			if err := upsertDay(ctx, tx, d); err != nil {
				return err
			}
			if err := enqueueUpsert(ctx, tx, domain.KindDay, d.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, nil, err
	}
	return trip, res.Days, nil
}

// Trip returns one trip by id.
func (s *Store) Trip(ctx context.Context, scope syncx.Scope, id uuid.UUID) (domain.Trip, error) {
	return getTrip(ctx, s.dbs[scope], id)
}

// Trips lists all trips in a scope ordered by start date.
func (s *Store) Trips(ctx context.Context, scope syncx.Scope) ([]domain.Trip, error) {
	return listTrips(ctx, s.dbs[scope])
}

// UpdateTrip saves field edits and, when the date range moved, reconciles
// the day sequence in the same transaction: days still in range keep their
// stops, days that fell out are cascade-deleted, and numbering is
// reassigned densely by ascending date.
func (s *Store) UpdateTrip(ctx context.Context, scope syncx.Scope, trip domain.Trip) (domain.Trip, error) {
	trip.StartDate = domain.DateOnly(trip.StartDate)
	trip.EndDate = domain.DateOnly(trip.EndDate)
	trip.UpdatedAt = time.Now().UTC()

	if err := trip.Validate(); err != nil {
		return domain.Trip{}, err
	}

	prev, err := getTrip(ctx, s.dbs[scope], trip.ID)
	if err != nil {
		return domain.Trip{}, err
	}
	trip.CreatedAt = prev.CreatedAt

	rangeChanged := !prev.StartDate.Equal(trip.StartDate) || !prev.EndDate.Equal(trip.EndDate)

	var res plan.Result
	if rangeChanged {
		oldDays, err := listDays(ctx, s.dbs[scope], trip.ID)
		if err != nil {
			return domain.Trip{}, err
		}
		res = plan.Reconcile(trip, oldDays)
	}

	err = s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsertTrip(ctx, tx, trip); err != nil {
			return err
		}
		if err := enqueueUpsert(ctx, tx, domain.KindTrip, trip.ID, trip); err != nil {
			return err
		}
		if !rangeChanged {
			return nil
		}
		for _, d := range res.Dropped {
			if err := deleteDayCascade(ctx, tx, d.ID); err != nil {
				return err
			}
			if err := enqueueDelete(ctx, tx, domain.KindDay, d.ID); err != nil {
				return err
			}
		}
		for _, d := range res.Days {
			if err := upsertDay(ctx, tx, d); err != nil {
				return err
			}
			if err := enqueueUpsert(ctx, tx, domain.KindDay, d.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// DeleteTrip removes the trip and its whole subtree. The outbox carries
// only the root delete: every replica cascades identically on apply.
func (s *Store) DeleteTrip(ctx context.Context, scope syncx.Scope, id uuid.UUID) error {
	if _, err := getTrip(ctx, s.dbs[scope], id); err != nil {
		return err
	}
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		// Enqueue first: the zone walk needs the rows still present.
		if err := enqueueDelete(ctx, tx, domain.KindTrip, id); err != nil {
			return err
		}
		return deleteTripCascade(ctx, tx, id)
	})
}

// Day returns one day by id.
func (s *Store) Day(ctx context.Context, scope syncx.Scope, id uuid.UUID) (domain.Day, error) {
	return getDay(ctx, s.dbs[scope], id)
}

// Days lists a trip's days ordered by day number.
func (s *Store) Days(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) ([]domain.Day, error) {
	return listDays(ctx, s.dbs[scope], tripID)
}

// UpdateDay saves day notes/location edits. Date and numbering belong to
// the reconciler and are not editable here.
func (s *Store) UpdateDay(ctx context.Context, scope syncx.Scope, day domain.Day) (domain.Day, error) {
	prev, err := getDay(ctx, s.dbs[scope], day.ID)
	if err != nil {
		return domain.Day{}, err
	}
	prev.Notes = day.Notes
	prev.Location = day.Location
	prev.UpdatedAt = time.Now().UTC()

	if err := prev.Validate(); err != nil {
		return domain.Day{}, err
	}

	err = s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsertDay(ctx, tx, prev); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, domain.KindDay, prev.ID, prev)
	})
	if err != nil {
		return domain.Day{}, err
	}
	return prev, nil
}

// AddStop appends a stop to a day, assigning the next dense sort order.
func (s *Store) AddStop(ctx context.Context, scope syncx.Scope, stop domain.Stop) (domain.Stop, error) {
	now := time.Now().UTC()
	if stop.ID == uuid.Nil {
		stop.ID = uuid.New()
	}
	if stop.Category == "" {
		stop.Category = domain.StopOther
	}
	stop.CreatedAt = now
	stop.UpdatedAt = now

	if err := stop.Validate(); err != nil {
		return domain.Stop{}, err
	}

	// Sibling count and insert share one transaction so a concurrent
	// merge cannot hand two stops the same sort order.
	err := s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := getDay(ctx, tx, stop.DayID); err != nil {
			return err
		}
		siblings, err := listStops(ctx, tx, stop.DayID)
		if err != nil {
			return err
		}
		stop.SortOrder = len(siblings)
		if err := upsertStop(ctx, tx, stop); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, domain.KindStop, stop.ID, stop)
	})
	if err != nil {
		return domain.Stop{}, err
	}
	return stop, nil
}

// Stop returns one stop by id.
func (s *Store) Stop(ctx context.Context, scope syncx.Scope, id uuid.UUID) (domain.Stop, error) {
	return getStop(ctx, s.dbs[scope], id)
}

// Stops lists a day's stops in sort order.
func (s *Store) Stops(ctx context.Context, scope syncx.Scope, dayID uuid.UUID) ([]domain.Stop, error) {
	return listStops(ctx, s.dbs[scope], dayID)
}

// UpdateStop saves stop edits, keeping its current day and sort order.
func (s *Store) UpdateStop(ctx context.Context, scope syncx.Scope, stop domain.Stop) (domain.Stop, error) {
	prev, err := getStop(ctx, s.dbs[scope], stop.ID)
	if err != nil {
		return domain.Stop{}, err
	}
	stop.DayID = prev.DayID
	stop.SortOrder = prev.SortOrder
	stop.CreatedAt = prev.CreatedAt
	stop.UpdatedAt = time.Now().UTC()

	if err := stop.Validate(); err != nil {
		return domain.Stop{}, err
	}

	err = s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsertStop(ctx, tx, stop); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, domain.KindStop, stop.ID, stop)
	})
	if err != nil {
		return domain.Stop{}, err
	}
	return stop, nil
}

// MoveStop moves a stop to position toIndex within its day and renumbers
// all siblings densely.
func (s *Store) MoveStop(ctx context.Context, scope syncx.Scope, stopID uuid.UUID, toIndex int) error {
	now := time.Now().UTC()
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		stop, err := getStop(ctx, tx, stopID)
		if err != nil {
			return err
		}
		siblings, err := listStops(ctx, tx, stop.DayID)
		if err != nil {
			return err
		}
		if toIndex < 0 || toIndex >= len(siblings) {
			return fmt.Errorf("%w: move target %d out of range", common.ErrorValidation, toIndex)
		}

		reordered := make([]domain.Stop, 0, len(siblings))
		for _, sib := range siblings {
			if sib.ID != stopID {
				reordered = append(reordered, sib)
			}
		}
		reordered = append(reordered[:toIndex], append([]domain.Stop{stop}, reordered[toIndex:]...)...)

		for i := range reordered {
			if reordered[i].SortOrder == i && reordered[i].ID != stopID {
				continue
			}
			reordered[i].SortOrder = i
			reordered[i].UpdatedAt = now
			if err := upsertStop(ctx, tx, reordered[i]); err != nil {
				return err
			}
			if err := enqueueUpsert(ctx, tx, domain.KindStop, reordered[i].ID, reordered[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteStop removes a stop with its children and closes the sort-order
// gap it leaves behind.
func (s *Store) DeleteStop(ctx context.Context, scope syncx.Scope, id uuid.UUID) error {
	stop, err := getStop(ctx, s.dbs[scope], id)
	if err != nil {
		return err
	}
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := enqueueDelete(ctx, tx, domain.KindStop, id); err != nil {
			return err
		}
		if err := deleteStopCascade(ctx, tx, id); err != nil {
			return err
		}
		renumbered, err := renumberStops(ctx, tx, stop.DayID)
		if err != nil {
			return err
		}
		for _, sib := range renumbered {
			if err := enqueueUpsert(ctx, tx, domain.KindStop, sib.ID, sib); err != nil {
				return err
			}
		}
		return nil
	})
}

// addChild is the shared shape of the small leaf inserts below.
func (s *Store) addChild(ctx context.Context, scope syncx.Scope, kind domain.Kind, id uuid.UUID,
	entity any, upsert func(context.Context, dbx.DBTX) error) error {
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsert(ctx, tx); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, kind, id, entity)
	})
}

// AddComment attaches a comment to a stop.
func (s *Store) AddComment(ctx context.Context, scope syncx.Scope, c domain.Comment) (domain.Comment, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		return domain.Comment{}, err
	}
	if _, err := getStop(ctx, s.dbs[scope], c.StopID); err != nil {
		return domain.Comment{}, err
	}
	err := s.addChild(ctx, scope, domain.KindComment, c.ID, c,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertComment(ctx, tx, c) })
	if err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// Comments lists a stop's comments.
func (s *Store) Comments(ctx context.Context, scope syncx.Scope, stopID uuid.UUID) ([]domain.Comment, error) {
	return listComments(ctx, s.dbs[scope], stopID)
}

// AddLink attaches a link to a stop.
func (s *Store) AddLink(ctx context.Context, scope syncx.Scope, l domain.Link) (domain.Link, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now().UTC()
	if err := l.Validate(); err != nil {
		return domain.Link{}, err
	}
	if _, err := getStop(ctx, s.dbs[scope], l.StopID); err != nil {
		return domain.Link{}, err
	}
	err := s.addChild(ctx, scope, domain.KindLink, l.ID, l,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertLink(ctx, tx, l) })
	if err != nil {
		return domain.Link{}, err
	}
	return l, nil
}

// Links lists a stop's links.
func (s *Store) Links(ctx context.Context, scope syncx.Scope, stopID uuid.UUID) ([]domain.Link, error) {
	return listLinks(ctx, s.dbs[scope], stopID)
}

// AddTodo attaches a todo to a stop.
func (s *Store) AddTodo(ctx context.Context, scope syncx.Scope, td domain.Todo) (domain.Todo, error) {
	if td.ID == uuid.Nil {
		td.ID = uuid.New()
	}
	td.CreatedAt = time.Now().UTC()
	if err := td.Validate(); err != nil {
		return domain.Todo{}, err
	}
	if _, err := getStop(ctx, s.dbs[scope], td.StopID); err != nil {
		return domain.Todo{}, err
	}
	err := s.addChild(ctx, scope, domain.KindTodo, td.ID, td,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertTodo(ctx, tx, td) })
	if err != nil {
		return domain.Todo{}, err
	}
	return td, nil
}

// Todos lists a stop's todos.
func (s *Store) Todos(ctx context.Context, scope syncx.Scope, stopID uuid.UUID) ([]domain.Todo, error) {
	return listTodos(ctx, s.dbs[scope], stopID)
}

// AddBooking attaches a booking to a trip.
func (s *Store) AddBooking(ctx context.Context, scope syncx.Scope, b domain.Booking) (domain.Booking, error) {
	now := time.Now().UTC()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := b.Validate(); err != nil {
		return domain.Booking{}, err
	}
	if _, err := getTrip(ctx, s.dbs[scope], b.TripID); err != nil {
		return domain.Booking{}, err
	}
	err := s.addChild(ctx, scope, domain.KindBooking, b.ID, b,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertBooking(ctx, tx, b) })
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// Bookings lists a trip's bookings.
func (s *Store) Bookings(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) ([]domain.Booking, error) {
	return listBookings(ctx, s.dbs[scope], tripID)
}

// AddExpense attaches an expense to a trip.
func (s *Store) AddExpense(ctx context.Context, scope syncx.Scope, e domain.Expense) (domain.Expense, error) {
	now := time.Now().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return domain.Expense{}, err
	}
	if _, err := getTrip(ctx, s.dbs[scope], e.TripID); err != nil {
		return domain.Expense{}, err
	}
	err := s.addChild(ctx, scope, domain.KindExpense, e.ID, e,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertExpense(ctx, tx, e) })
	if err != nil {
		return domain.Expense{}, err
	}
	return e, nil
}

// Expenses lists a trip's expenses.
func (s *Store) Expenses(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) ([]domain.Expense, error) {
	return listExpenses(ctx, s.dbs[scope], tripID)
}

// AddList attaches a checklist to a trip.
func (s *Store) AddList(ctx context.Context, scope syncx.Scope, l domain.List) (domain.List, error) {
	now := time.Now().UTC()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := l.Validate(); err != nil {
		return domain.List{}, err
	}
	if _, err := getTrip(ctx, s.dbs[scope], l.TripID); err != nil {
		return domain.List{}, err
	}
	err := s.addChild(ctx, scope, domain.KindList, l.ID, l,
		func(ctx context.Context, tx dbx.DBTX) error { return upsertList(ctx, tx, l) })
	if err != nil {
		return domain.List{}, err
	}
	return l, nil
}

// Lists returns a trip's checklists.
func (s *Store) Lists(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) ([]domain.List, error) {
	return listLists(ctx, s.dbs[scope], tripID)
}

// AddListItem appends an item to a checklist.
func (s *Store) AddListItem(ctx context.Context, scope syncx.Scope, item domain.ListItem) (domain.ListItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now().UTC()
	if err := item.Validate(); err != nil {
		return domain.ListItem{}, err
	}
	// Not addChild: the sort order depends on siblings read in the same
	// transaction as the insert.
	err := s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := listListItems(ctx, tx, item.ListID)
		if err != nil {
			return err
		}
		item.SortOrder = len(existing)
		if err := upsertListItem(ctx, tx, item); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, domain.KindListItem, item.ID, item)
	})
	if err != nil {
		return domain.ListItem{}, err
	}
	return item, nil
}

// ListItems returns a checklist's items in order.
func (s *Store) ListItems(ctx context.Context, scope syncx.Scope, listID uuid.UUID) ([]domain.ListItem, error) {
	return listListItems(ctx, s.dbs[scope], listID)
}

// leafTables maps kinds that delete as a single row, no cascade.
var leafTables = map[domain.Kind]string{
	domain.KindComment:  "comments",
	domain.KindLink:     "links",
	domain.KindTodo:     "todos",
	domain.KindBooking:  "bookings",
	domain.KindExpense:  "expenses",
	domain.KindListItem: "list_items",
}

// DeleteEntity removes a leaf entity (comment, link, todo, booking,
// expense, list item) or a checklist. Trips, days and stops have their
// own delete operations because they renumber or reconcile siblings.
func (s *Store) DeleteEntity(ctx context.Context, scope syncx.Scope, ref domain.Ref) error {
	if ref.Kind == domain.KindList {
		return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
			if err := enqueueDelete(ctx, tx, domain.KindList, ref.ID); err != nil {
				return err
			}
			return deleteListCascade(ctx, tx, ref.ID)
		})
	}
	table, ok := leafTables[ref.Kind]
	if !ok {
		return fmt.Errorf("%w: kind %q has no leaf delete", common.ErrorValidation, ref.Kind)
	}
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := enqueueDelete(ctx, tx, ref.Kind, ref.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, ref.ID.String())
		return err
	})
}

// SaveShare persists share metadata (roster, url, zone) for a trip.
func (s *Store) SaveShare(ctx context.Context, scope syncx.Scope, share domain.Share) (domain.Share, error) {
	now := time.Now().UTC()
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	if share.CreatedAt.IsZero() {
		share.CreatedAt = now
	}
	share.UpdatedAt = now

	err := s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := upsertShare(ctx, tx, share); err != nil {
			return err
		}
		return enqueueUpsert(ctx, tx, domain.KindShare, share.ID, share)
	})
	if err != nil {
		return domain.Share{}, err
	}
	return share, nil
}

// ShareForTrip returns the share attached to a trip, or ErrorNotFound.
func (s *Store) ShareForTrip(ctx context.Context, scope syncx.Scope, tripID uuid.UUID) (domain.Share, error) {
	return getShareByTrip(ctx, s.dbs[scope], tripID)
}

// DeleteShare removes the share record locally.
func (s *Store) DeleteShare(ctx context.Context, scope syncx.Scope, id uuid.UUID) error {
	return s.withTx(ctx, scope, func(ctx context.Context, tx dbx.DBTX) error {
		if err := enqueueDelete(ctx, tx, domain.KindShare, id); err != nil {
			return err
		}
		return deleteShare(ctx, tx, id)
	})
}

// RemoveSharedTrip drops a trip subtree from the shared scope without
// queueing outbox entries; used when a share ends and its zone is purged.
func (s *Store) RemoveSharedTrip(ctx context.Context, tripID uuid.UUID) error {
	return s.withTx(ctx, syncx.ScopeShared, func(ctx context.Context, tx dbx.DBTX) error {
		return deleteTripCascade(ctx, tx, tripID)
	})
}

// TripIDFor resolves the owning trip of any entity by walking the graph
// upward. Returns ErrorNotFound when the entity is detached.
func (s *Store) TripIDFor(ctx context.Context, scope syncx.Scope, ref domain.Ref) (uuid.UUID, error) {
	return tripIDFor(ctx, s.dbs[scope], ref)
}

// tripIDFor is the transaction-friendly walk behind TripIDFor; the outbox
// uses it inside mutation transactions.
func tripIDFor(ctx context.Context, q dbx.DBTX, ref domain.Ref) (uuid.UUID, error) {
	parent := func(query, id string) (uuid.UUID, error) {
		var raw string
		err := q.QueryRowContext(ctx, query, id).Scan(&raw)
		if err != nil {
			return uuid.Nil, common.ErrorNotFound
		}
		return uuid.Parse(raw)
	}

	switch ref.Kind {
	case domain.KindTrip:
		if _, err := getTrip(ctx, q, ref.ID); err != nil {
			return uuid.Nil, err
		}
		return ref.ID, nil
	case domain.KindDay:
		return parent(`SELECT trip_id FROM days WHERE id = ?`, ref.ID.String())
	case domain.KindBooking:
		return parent(`SELECT trip_id FROM bookings WHERE id = ?`, ref.ID.String())
	case domain.KindExpense:
		return parent(`SELECT trip_id FROM expenses WHERE id = ?`, ref.ID.String())
	case domain.KindList:
		return parent(`SELECT trip_id FROM lists WHERE id = ?`, ref.ID.String())
	case domain.KindListItem:
		listID, err := parent(`SELECT list_id FROM list_items WHERE id = ?`, ref.ID.String())
		if err != nil {
			return uuid.Nil, err
		}
		return tripIDFor(ctx, q, domain.Ref{Kind: domain.KindList, ID: listID})
	case domain.KindStop:
		dayID, err := parent(`SELECT day_id FROM stops WHERE id = ?`, ref.ID.String())
		if err != nil {
			return uuid.Nil, err
		}
		return tripIDFor(ctx, q, domain.Ref{Kind: domain.KindDay, ID: dayID})
	case domain.KindComment, domain.KindLink, domain.KindTodo:
		table := map[domain.Kind]string{
			domain.KindComment: "comments",
			domain.KindLink:    "links",
			domain.KindTodo:    "todos",
		}[ref.Kind]
		stopID, err := parent(`SELECT stop_id FROM `+table+` WHERE id = ?`, ref.ID.String())
		if err != nil {
			return uuid.Nil, err
		}
		return tripIDFor(ctx, q, domain.Ref{Kind: domain.KindStop, ID: stopID})
	case domain.KindShare:
		share, err := getShare(ctx, q, ref.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return share.TripID, nil
	}
	return uuid.Nil, fmt.Errorf("%w: cannot resolve kind %q", common.ErrorValidation, ref.Kind)
}
