package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking. Transitions are
// driven exclusively by the booking service: CREATED on registration,
// PAID/REJECTED on a verified payment event, BOOKED once tickets arrive,
// CANCELLED on user request. CANCELLED and COMPLETED are terminal.
type BookingStatus string

const (
	StatusCreated   BookingStatus = "CREATED"
	StatusPaid      BookingStatus = "PAID"
	StatusRejected  BookingStatus = "REJECTED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusBooked    BookingStatus = "BOOKED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// Terminal reports whether no further transition may leave this status.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PaymentStatus tracks the payment leg of a booking independently of the
// overall lifecycle status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRejected PaymentStatus = "REJECTED"
)

// Booking is the aggregate the event choreography converges on.
//
// Fields:
//  ID                 – short identifier in the form RES-XXXXXXXX.
//  UUID               – globally unique, immutable identifier.
//  NumberOfPassengers – passenger count, always > 0.
//  Origin             – port of departure.
//  DestinationID      – itinerary reference.
//  BoardingDate       – boarding date as given by the itinerary.
//  NumberOfCabins     – cabin count, always > 0.
//  TotalCost          – cabin cost times cabin count, never negative.
//  CustomerEmail      – customer contact.
//  CustomerName       – customer display name.
//  Status             – lifecycle status (see BookingStatus).
//  PaymentStatus      – payment leg status (see PaymentStatus).
//  PaymentID          – identifier assigned by the payment service.
//  PaymentLink        – checkout URL returned by the payment service.
//  Tickets            – batch attached once the ticket service delivers.
//  CreatedAt          – creation timestamp (UTC).
//  UpdatedAt          – refreshed on every mutation (UTC).
//  AdditionalData     – free-form extension map.
type Booking struct {
	ID                 string                 `json:"id"`
	UUID               uuid.UUID              `json:"uuid"`
	NumberOfPassengers int                    `json:"number_of_passengers"`
	Origin             string                 `json:"origin"`
	DestinationID      int                    `json:"destination_id"`
	BoardingDate       string                 `json:"boarding_date"`
	NumberOfCabins     int                    `json:"number_of_cabins"`
	TotalCost          float64                `json:"total_cost"`
	CustomerEmail      string                 `json:"customer_email"`
	CustomerName       string                 `json:"customer_name"`
	Status             BookingStatus          `json:"status"`
	PaymentStatus      PaymentStatus          `json:"payment_status"`
	PaymentID          string                 `json:"payment_id,omitempty"`
	PaymentLink        string                 `json:"payment_link,omitempty"`
	Tickets            *TicketBatch           `json:"tickets,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	AdditionalData     map[string]interface{} `json:"additional_data,omitempty"`
}

// BookingEvent is the body published on booking creation and cancellation.
type BookingEvent struct {
	DestinationID  int    `json:"destination_id"`
	NumberOfCabins int    `json:"number_of_cabins"`
	CustomerEmail  string `json:"customer_email"`
	CustomerName   string `json:"customer_name"`
}
