// Package booking is the core engine: it prices tickets, renders QR-coded
// ticket summaries, and owns the booking lifecycle.
package booking

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
)

type DBLayer interface {
	InsertForEvent(ctx context.Context, eventID int64, build func(models.Event) (*models.Booking, error)) (*models.Booking, *models.Event, error)
	GetUserWithDetails(ctx context.Context, userID int64) (*models.User, *models.UserDetails, error)
	ListByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error)
	ListAll(ctx context.Context) ([]models.BookingWithParties, error)
	GetOwned(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	Delete(ctx context.Context, bookingID int64) error
	ListWithTitles(ctx context.Context) ([]models.Booking, map[int64]string, error)
}

type QREncoder interface {
	DataURI(text string) (string, error)
}

// Publisher emits booking lifecycle events to the message bus. A nil
// Publisher disables publishing.
type Publisher interface {
	PublishBookingCreated(ctx context.Context, booking models.Booking) error
	PublishBookingCancelled(ctx context.Context, booking models.Booking) error
}

type Service struct {
	DB        DBLayer
	QR        QREncoder
	Publisher Publisher
	Logger    *logger.Logger
}

func NewService(db DBLayer, qr QREncoder, pub Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, QR: qr, Publisher: pub, Logger: log}
}

// Book prices the request against the event row, renders the QR ticket and
// persists the booking. The event read and the insert share one transaction
// so the stored total always matches the price that was read.
func (s *Service) Book(ctx context.Context, userID int64, req models.BookRequest) (*models.BookingWithParties, error) {
	if req.EventID <= 0 || req.TicketsCount <= 0 {
		return nil, apperr.E(apperr.ErrValidation, "Event ID and ticket count are required")
	}

	user, details, err := s.DB.GetUserWithDetails(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	email := ""
	if details != nil {
		email = details.Email
	}

	booking, event, err := s.DB.InsertForEvent(ctx, req.EventID, func(event models.Event) (*models.Booking, error) {
		now := time.Now().UTC()
		total := event.Price.Mul(decimal.NewFromInt(int64(req.TicketsCount)))

		text := TicketText(event.Title, event.Date, event.Venue,
			user.FirstName, user.LastName, user.Mobile, email,
			req.TicketsCount, total, now)
		code, err := s.QR.DataURI(text)
		if err != nil {
			return nil, err
		}

		return &models.Booking{
			EventID:      event.EventID,
			UserID:       userID,
			TicketsCount: req.TicketsCount,
			TotalPrice:   total,
			QRCode:       code,
			BookingDate:  now,
		}, nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.E(apperr.ErrNotFound, "Event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.Logger.LogBooking("CREATE", fmt.Sprintf("%d", booking.BookingID),
		fmt.Sprintf("user %d took %d ticket(s) for event %d, total %s",
			userID, booking.TicketsCount, event.EventID, booking.TotalPrice.String()))

	if s.Publisher != nil {
		if err := s.Publisher.PublishBookingCreated(ctx, *booking); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("publish booking created: %v", err))
		}
	}

	return &models.BookingWithParties{
		Booking: *booking,
		Event:   event.Summary(),
		User: models.UserSummary{
			ID:        user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Mobile:    user.Mobile,
			Email:     email,
		},
	}, nil
}

// ListMine returns the caller's bookings, most recent first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]models.BookingWithEvent, error) {
	bookings, err := s.DB.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListAll returns every booking for the admin view, oldest first.
func (s *Service) ListAll(ctx context.Context) ([]models.BookingWithParties, error) {
	bookings, err := s.DB.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	return bookings, nil
}

// Cancel deletes the caller's booking. A booking that does not exist and a
// booking owned by someone else answer identically, so ownership cannot be
// probed.
func (s *Service) Cancel(ctx context.Context, userID, bookingID int64) error {
	booking, err := s.DB.GetOwned(ctx, bookingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.E(apperr.ErrNotFound, "Booking not found or not authorized")
	}
	if err != nil {
		return fmt.Errorf("lookup booking: %w", err)
	}

	if err := s.DB.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	s.Logger.LogBooking("CANCEL", fmt.Sprintf("%d", bookingID), fmt.Sprintf("cancelled by user %d", userID))

	if s.Publisher != nil {
		if err := s.Publisher.PublishBookingCancelled(ctx, *booking); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("publish booking cancelled: %v", err))
		}
	}
	return nil
}

// Stats aggregates bookings into the admin dashboard rollup. Sums are done
// in decimal space, never float.
func (s *Service) Stats(ctx context.Context) (*models.BookingStats, error) {
	bookings, titles, err := s.DB.ListWithTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}

	stats := &models.BookingStats{TotalRevenue: decimal.Zero}
	perEvent := make(map[int64]*models.EventBookingStats)
	var order []int64

	for _, b := range bookings {
		stats.TotalBookings++
		stats.TotalTickets += b.TicketsCount
		stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalPrice)

		row, ok := perEvent[b.EventID]
		if !ok {
			row = &models.EventBookingStats{
				EventID: b.EventID,
				Title:   titles[b.EventID],
				Revenue: decimal.Zero,
			}
			perEvent[b.EventID] = row
			order = append(order, b.EventID)
		}
		row.Bookings++
		row.Tickets += b.TicketsCount
		row.Revenue = row.Revenue.Add(b.TotalPrice)
	}

	stats.PerEvent = make([]models.EventBookingStats, 0, len(order))
	for _, id := range order {
		stats.PerEvent = append(stats.PerEvent, *perEvent[id])
	}
	return stats, nil
}
