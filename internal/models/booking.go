package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Booking links one user and one event with a derived, write-once total.
// QRCode holds the ticket summary encoded as a PNG data URI; it is immutable
// after creation. "Cancelled" is row deletion, not a status.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID    int64           `bun:"booking_id,pk,autoincrement" json:"booking_id"`
	EventID      int64           `bun:"event_id,notnull" json:"event_id"`
	UserID       int64           `bun:"user_id,notnull" json:"user_id"`
	TicketsCount int             `bun:"tickets_count,notnull" json:"tickets_count"`
	TotalPrice   decimal.Decimal `bun:"total_price,notnull" json:"total_price"`
	QRCode       string          `bun:"qr_code" json:"qr_code"`
	BookingDate  time.Time       `bun:"booking_date,notnull,default:current_timestamp" json:"booking_date"`
}

// BookRequest is the body for POST /api/bookings/ticket.
type BookRequest struct {
	EventID      int64 `json:"event_id"`
	TicketsCount int   `json:"tickets_count"`
}

// UserSummary is the attendee projection embedded in booking responses.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email,omitempty"`
}

// BookingWithEvent is the "my bookings" row: the booking plus its event.
type BookingWithEvent struct {
	Booking
	Event EventSummary `json:"event"`
}

// BookingWithParties is the admin view row joined with both sides.
type BookingWithParties struct {
	Booking
	Event EventSummary `json:"event"`
	User  UserSummary  `json:"user"`
}

// EventBookingStats is the per-event rollup in the admin stats view.
type EventBookingStats struct {
	EventID  int64           `bun:"event_id" json:"event_id"`
	Title    string          `bun:"title" json:"title"`
	Bookings int             `bun:"bookings" json:"bookings"`
	Tickets  int             `bun:"tickets" json:"tickets"`
	Revenue  decimal.Decimal `bun:"revenue" json:"revenue"`
}

// BookingStats summarizes all bookings for the admin dashboard.
type BookingStats struct {
	TotalBookings int                 `json:"total_bookings"`
	TotalTickets  int                 `json:"total_tickets"`
	TotalRevenue  decimal.Decimal     `json:"total_revenue"`
	PerEvent      []EventBookingStats `json:"per_event"`
}
