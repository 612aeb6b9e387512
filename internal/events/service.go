// Package events is the event catalog: publicly readable, admin-writable
// CRUD over bookable events.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"event-ticketing/internal/apperr"
	"event-ticketing/internal/logger"
	"event-ticketing/internal/models"
	"event-ticketing/internal/upload"
)

type DBLayer interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Insert(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

type Files interface {
	Remove(purpose upload.Purpose, key string) error
}

type Service struct {
	DB      DBLayer
	Files   Files
	BaseURL string
	Logger  *logger.Logger
}

func NewService(db DBLayer, files Files, baseURL string, log *logger.Logger) *Service {
	return &Service{DB: db, Files: files, BaseURL: baseURL, Logger: log}
}

// List returns every event with image references resolved to absolute URLs.
// No pagination: the catalog is served whole.
func (s *Service) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.DB.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		if events[i].Image != "" {
			events[i].Image = upload.URL(s.BaseURL, upload.PurposeEventImage, events[i].Image)
		}
	}
	return events, nil
}

// Create validates and stores a new event. The image argument is the storage
// key of an already-saved upload, empty when no image was attached.
func (s *Service) Create(ctx context.Context, title, date, venue string, price decimal.Decimal, image string) (*models.Event, error) {
	if title == "" || date == "" || venue == "" {
		return nil, apperr.E(apperr.ErrValidation, "Title, date and venue are required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperr.E(apperr.ErrValidation, "Date must be YYYY-MM-DD")
	}
	if price.IsNegative() {
		return nil, apperr.E(apperr.ErrValidation, "Price cannot be negative")
	}

	event := &models.Event{
		Title:     title,
		Date:      date,
		Venue:     venue,
		Price:     price,
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.Logger.Info("EVENTS", fmt.Sprintf("Created event %d (%s)", event.EventID, event.Title))
	return event, nil
}

// Update applies a partial update. Omitting the image leaves the existing
// image untouched; supplying one replaces it and deletes the old file.
func (s *Service) Update(ctx context.Context, id int64, upd models.EventUpdate) (*models.Event, error) {
	event, err := s.DB.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup event: %w", err)
	}

	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, apperr.E(apperr.ErrValidation, "Title cannot be empty")
		}
		event.Title = *upd.Title
	}
	if upd.Date != nil {
		if _, err := time.Parse("2006-01-02", *upd.Date); err != nil {
			return nil, apperr.E(apperr.ErrValidation, "Date must be YYYY-MM-DD")
		}
		event.Date = *upd.Date
	}
	if upd.Venue != nil {
		if *upd.Venue == "" {
			return nil, apperr.E(apperr.ErrValidation, "Venue cannot be empty")
		}
		event.Venue = *upd.Venue
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, apperr.E(apperr.ErrValidation, "Price cannot be negative")
		}
		event.Price = *upd.Price
	}
	if upd.NewImage != "" {
		if event.Image != "" {
			if err := s.Files.Remove(upload.PurposeEventImage, event.Image); err != nil {
				s.Logger.Warn("EVENTS", fmt.Sprintf("Failed to remove old image %s: %v", event.Image, err))
			}
		}
		event.Image = upd.NewImage
	}

	if err := s.DB.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes an event; dependent bookings cascade with it and the event
// image file is cleaned off disk.
func (s *Service) Delete(ctx context.Context, id int64) error {
	event, err := s.DB.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.ErrNotFound, "Event not found")
	}
	if err != nil {
		return fmt.Errorf("lookup event: %w", err)
	}

	if err := s.DB.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if event.Image != "" {
		if err := s.Files.Remove(upload.PurposeEventImage, event.Image); err != nil {
			s.Logger.Warn("EVENTS", fmt.Sprintf("Failed to remove image %s: %v", event.Image, err))
		}
	}

	s.Logger.Info("EVENTS", fmt.Sprintf("Deleted event %d and its bookings", id))
	return nil
}
