package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Event is a bookable occasion. Price uses decimal storage so booking totals
// never pick up binary-float drift. Date is a calendar date in YYYY-MM-DD
// form. Image stores the storage key only.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID   int64           `bun:"event_id,pk,autoincrement" json:"event_id"`
	Title     string          `bun:"title,notnull" json:"title"`
	Date      string          `bun:"date,notnull" json:"date"`
	Venue     string          `bun:"venue,notnull" json:"venue"`
	Price     decimal.Decimal `bun:"price,notnull" json:"price"`
	Image     string          `bun:"image,nullzero" json:"image"`
	CreatedAt time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// EventUpdate carries a partial update; nil fields are left untouched.
type EventUpdate struct {
	Title *string
	Date  *string
	Venue *string
	Price *decimal.Decimal
	// NewImage is set only when the request uploaded a replacement image;
	// omitting the image leaves the existing one in place.
	NewImage string
}

// EventSummary is the event projection embedded in booking responses.
type EventSummary struct {
	EventID int64           `bun:"event_id" json:"event_id"`
	Title   string          `bun:"title" json:"title"`
	Date    string          `bun:"date" json:"date"`
	Venue   string          `bun:"venue" json:"venue"`
	Price   decimal.Decimal `bun:"price" json:"price"`
	Image   string          `bun:"image" json:"image,omitempty"`
}

func (e Event) Summary() EventSummary {
	return EventSummary{
		EventID: e.EventID,
		Title:   e.Title,
		Date:    e.Date,
		Venue:   e.Venue,
		Price:   e.Price,
		Image:   e.Image,
	}
}
