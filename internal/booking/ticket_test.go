package booking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"event-ticketing/internal/booking"
)

func TestTicketText(t *testing.T) {
	bookedOn := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)

	text := booking.TicketText(
		"Tech Expo", "2026-11-05", "BMICH, Colombo",
		"Nimal", "Perera", "0711111111", "nimal@example.com",
		3, decimal.RequireFromString("4500.00"), bookedOn,
	)

	assert.Contains(t, text, "EVENT TICKET SYSTEM")
	assert.Contains(t, text, "• Title: Tech Expo")
	assert.Contains(t, text, "• Date: 2026-11-05")
	assert.Contains(t, text, "• Venue: BMICH, Colombo")
	assert.Contains(t, text, "• Name: Nimal Perera")
	assert.Contains(t, text, "• Mobile: 0711111111")
	assert.Contains(t, text, "• Email: nimal@example.com")
	assert.Contains(t, text, "• Tickets: 3")
	assert.Contains(t, text, "• Total: Rs. 4500")
	assert.Contains(t, text, "• Booked On: 2026-10-01 14:30:00")
	assert.Contains(t, text, "Verified Entry Ticket")
}

func TestTicketTextMissingEmail(t *testing.T) {
	text := booking.TicketText(
		"Tech Expo", "2026-11-05", "BMICH, Colombo",
		"Nimal", "Perera", "0711111111", "",
		1, decimal.RequireFromString("1500.00"), time.Now().UTC(),
	)
	assert.Contains(t, text, "• Email: N/A")
}
