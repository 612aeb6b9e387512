// Package db is the persistence layer for bookings. List queries assemble
// their event and attendee projections in Go from batched lookups, keeping
// the SQL portable across the production and test dialects.
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"event-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// InsertForEvent reads the event and writes the booking in one transaction,
// so the priced total always reflects the event row the booking was built
// from. build receives the event snapshot and returns the booking to insert.
func (d *DB) InsertForEvent(ctx context.Context, eventID int64, build func(models.Event) (*models.Booking, error)) (*models.Booking, *models.Event, error) {
	var booking *models.Booking
	var event models.Event

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&event).
			Where("event_id = ?", eventID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return err
		}

		booking, err = build(event)
		if err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(booking).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return booking, &event, nil
}

// GetUserWithDetails returns the user and their profile row; the details
// pointer is nil when no profile has been written.
func (d *DB) GetUserWithDetails(ctx context.Context, userID int64) (*models.User, *models.UserDetails, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	var details models.UserDetails
	err = d.Bun.NewSelect().
		Model(&details).
		Where("account_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &user, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &user, &details, nil
}

// ListByUser returns one user's bookings, newest first, each joined with its
// event summary.
func (d *DB) ListByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("booking_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	events, err := d.eventsByID(ctx, bookings)
	if err != nil {
		return nil, err
	}

	out := make([]models.BookingWithEvent, 0, len(bookings))
	for _, b := range bookings {
		row := models.BookingWithEvent{Booking: b}
		if ev, ok := events[b.EventID]; ok {
			row.Event = ev.Summary()
		}
		out = append(out, row)
	}
	return out, nil
}

// ListAll returns every booking, oldest first, joined with both the event
// and the attendee.
func (d *DB) ListAll(ctx context.Context) ([]models.BookingWithParties, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("booking_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	events, err := d.eventsByID(ctx, bookings)
	if err != nil {
		return nil, err
	}
	users, emails, err := d.usersByID(ctx, bookings)
	if err != nil {
		return nil, err
	}

	out := make([]models.BookingWithParties, 0, len(bookings))
	for _, b := range bookings {
		row := models.BookingWithParties{Booking: b}
		if ev, ok := events[b.EventID]; ok {
			row.Event = ev.Summary()
		}
		if u, ok := users[b.UserID]; ok {
			row.User = models.UserSummary{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Mobile:    u.Mobile,
				Email:     emails[u.ID],
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// GetOwned scopes the lookup to a single owner, so a missing row and a
// foreign booking are indistinguishable to the caller.
func (d *DB) GetOwned(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", bookingID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) Delete(ctx context.Context, bookingID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("booking_id = ?", bookingID).
		Exec(ctx)
	return err
}

// ListWithTitles feeds the stats rollup: every booking paired with its event
// title. Aggregation happens in the service so decimal sums stay exact.
func (d *DB) ListWithTitles(ctx context.Context) ([]models.Booking, map[int64]string, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("booking_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}

	events, err := d.eventsByID(ctx, bookings)
	if err != nil {
		return nil, nil, err
	}
	titles := make(map[int64]string, len(events))
	for id, ev := range events {
		titles[id] = ev.Title
	}
	return bookings, titles, nil
}

func (d *DB) eventsByID(ctx context.Context, bookings []models.Booking) (map[int64]models.Event, error) {
	ids := make([]int64, 0, len(bookings))
	seen := make(map[int64]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.EventID] {
			seen[b.EventID] = true
			ids = append(ids, b.EventID)
		}
	}
	if len(ids) == 0 {
		return map[int64]models.Event{}, nil
	}

	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("event_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Event, len(events))
	for _, ev := range events {
		byID[ev.EventID] = ev
	}
	return byID, nil
}

func (d *DB) usersByID(ctx context.Context, bookings []models.Booking) (map[int64]models.User, map[int64]string, error) {
	ids := make([]int64, 0, len(bookings))
	seen := make(map[int64]bool, len(bookings))
	for _, b := range bookings {
		if !seen[b.UserID] {
			seen[b.UserID] = true
			ids = append(ids, b.UserID)
		}
	}
	if len(ids) == 0 {
		return map[int64]models.User{}, map[int64]string{}, nil
	}

	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	var details []models.UserDetails
	err = d.Bun.NewSelect().
		Model(&details).
		Where("account_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	emails := make(map[int64]string, len(details))
	for _, dt := range details {
		emails[dt.AccountID] = dt.Email
	}
	return byID, emails, nil
}
