// Package db is the persistence layer for the event catalog.
package db

import (
	"context"

	"github.com/uptrace/bun"

	"event-ticketing/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) Insert(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) Update(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "date", "venue", "price", "image").
		Where("event_id = ?", event.EventID).
		Exec(ctx)
	return err
}

// Delete removes an event and its dependent bookings in one transaction,
// mirroring the schema's ON DELETE CASCADE on backends that do not enforce
// foreign keys.
func (d *DB) Delete(ctx context.Context, id int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Booking)(nil)).
			Where("event_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("event_id = ?", id).
			Exec(ctx)
		return err
	})
}
