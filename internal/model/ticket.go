package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is a single passenger ticket produced by the ticket service.
type Ticket struct {
	ID            int       `json:"id"`
	UUID          uuid.UUID `json:"uuid"`
	BookingID     string    `json:"booking_id"`
	CabinNumber   string    `json:"cabin_number"`
	DepartureDate string    `json:"departure_date"`
	IssuedAt      time.Time `json:"issued_at"`
}

// TicketBatch groups all tickets issued for one booking. Immutable once
// attached to the booking.
type TicketBatch struct {
	Tickets   []Ticket  `json:"tickets"`
	BookingID string    `json:"booking_id"`
	IssuedAt  time.Time `json:"issued_at"`
}
