package booking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TicketText renders the human-readable summary that gets encoded into the
// booking's QR code. The layout is fixed; gate scanners display it verbatim.
func TicketText(eventTitle, eventDate, venue, firstName, lastName, mobile, email string, tickets int, total decimal.Decimal, bookedOn time.Time) string {
	if email == "" {
		email = "N/A"
	}
	return fmt.Sprintf(`
━━━━━━━━━━━━━━━━━━━━━━
🎟️ EVENT TICKET SYSTEM
━━━━━━━━━━━━━━━━━━━━━━
🏛️  EVENT DETAILS
• Title: %s
• Date: %s
• Venue: %s

👤  ATTENDEE DETAILS
• Name: %s %s
• Mobile: %s
• Email: %s

🎫  BOOKING INFO
• Tickets: %d
• Total: Rs. %s
• Booked On: %s

━━━━━━━━━━━━━━━━━━━━━━
✅  Verified Entry Ticket
Thank you for your purchase!
Enjoy the Event 🎉
━━━━━━━━━━━━━━━━━━━━━━
`, eventTitle, eventDate, venue, firstName, lastName, mobile, email, tickets, total.String(), bookedOn.Format("2006-01-02 15:04:05"))
}
