// Package service implements the business rules of the cruise booking
// workflow: the booking state machine, the marketing notifier and the
// ticket generator, plus the handlers that feed broker events into them.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
)

// ErrNotEnoughCabins is returned when the itinerary cannot cover the
// requested cabin count. Handlers translate it into an HTTP 400.
var ErrNotEnoughCabins = errors.New("not enough cabins available")

// ItineraryLookup is the slice of the itinerary client the booking
// service needs: a single-document fetch used to validate capacity and
// price the booking.
type ItineraryLookup interface {
	Get(ctx context.Context, destinationID int) (*model.Itinerary, error)
}

// PaymentLinker requests a checkout link from the payments service.
type PaymentLinker interface {
	CreatePaymentLink(ctx context.Context, req model.PaymentLinkRequest) (*model.PaymentLinkResponse, error)
}

// EventPublisher is the slice of the broker client the services publish
// through. Publish errors are surfaced but callers treat delivery as fire
// and forget.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error
	PublishLog(ctx context.Context, message string)
}

// BookingService owns the booking registry and applies every state
// transition, whether triggered by an HTTP request or by a consumed
// event. It is the single writer of the registry.
type BookingService struct {
	repo        *repository.BookingRepo
	itineraries ItineraryLookup
	payments    PaymentLinker
	publisher   EventPublisher
	logger      *zap.Logger

	directExchange string
	createdKey     string
	cancelledKey   string
}

// NewBookingService wires the booking service. payments may be nil when
// no payment-link collaborator is configured.
func NewBookingService(
	repo *repository.BookingRepo,
	itineraries ItineraryLookup,
	payments PaymentLinker,
	publisher EventPublisher,
	directExchange, createdKey, cancelledKey string,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:           repo,
		itineraries:    itineraries,
		payments:       payments,
		publisher:      publisher,
		logger:         logger,
		directExchange: directExchange,
		createdKey:     createdKey,
		cancelledKey:   cancelledKey,
	}
}

// CreateBookingInput carries the validated fields of a creation request.
type CreateBookingInput struct {
	BoardingDate       string
	DestinationID      int
	NumberOfCabins     int
	NumberOfPassengers int
	Origin             string
	CustomerEmail      string
	CustomerName       string
}

// Create validates capacity against the itinerary, registers the booking
// as CREATED/PENDING with total_cost = cabin_cost x cabins, requests a
// payment link, and publishes the booking-created event. Payment-link and
// publish failures are logged but do not fail the creation: delivery is
// fire and forget by design.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	itinerary, err := s.itineraries.Get(ctx, in.DestinationID)
	if err != nil {
		return model.Booking{}, err
	}
	if itinerary.AvailableCabins < in.NumberOfCabins {
		return model.Booking{}, ErrNotEnoughCabins
	}

	now := time.Now().UTC()
	booking := model.Booking{
		ID:                 newBookingID(),
		UUID:               uuid.New(),
		NumberOfPassengers: in.NumberOfPassengers,
		Origin:             in.Origin,
		DestinationID:      in.DestinationID,
		BoardingDate:       in.BoardingDate,
		NumberOfCabins:     in.NumberOfCabins,
		TotalCost:          itinerary.CabinCost * float64(in.NumberOfCabins),
		CustomerEmail:      in.CustomerEmail,
		CustomerName:       in.CustomerName,
		Status:             model.StatusCreated,
		PaymentStatus:      model.PaymentPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if s.payments != nil {
		link, err := s.payments.CreatePaymentLink(ctx, model.PaymentLinkRequest{
			BookingID:     booking.ID,
			Amount:        booking.TotalCost,
			Currency:      "BRL",
			CustomerEmail: booking.CustomerEmail,
			CustomerName:  booking.CustomerName,
		})
		if err != nil {
			s.logger.Warn("payment link request failed", zap.String("booking_id", booking.ID), zap.Error(err))
		} else {
			booking.PaymentID = link.PaymentID
			booking.PaymentLink = link.PaymentLink
		}
	}

	s.repo.Insert(&booking)

	if err := s.publisher.Publish(ctx, s.directExchange, s.createdKey, model.BookingEvent{
		DestinationID:  booking.DestinationID,
		NumberOfCabins: booking.NumberOfCabins,
		CustomerEmail:  booking.CustomerEmail,
		CustomerName:   booking.CustomerName,
	}); err != nil {
		s.logger.Warn("booking created event not published", zap.String("booking_id", booking.ID), zap.Error(err))
	}
	s.publisher.PublishLog(ctx, "Booking created "+booking.ID)

	return booking, nil
}

// Cancel moves the booking to CANCELLED. Cancelling a booking already in
// a terminal state returns repository.ErrTerminalState rather than
// succeeding silently, so replayed cancels are distinguishable.
func (s *BookingService) Cancel(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Update(id, func(b *model.Booking) error {
		if b.Status.Terminal() {
			return repository.ErrTerminalState
		}
		b.Status = model.StatusCancelled
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}

	if err := s.publisher.Publish(ctx, s.directExchange, s.cancelledKey, model.BookingEvent{
		DestinationID:  booking.DestinationID,
		NumberOfCabins: booking.NumberOfCabins,
		CustomerEmail:  booking.CustomerEmail,
		CustomerName:   booking.CustomerName,
	}); err != nil {
		s.logger.Warn("booking cancelled event not published", zap.String("booking_id", booking.ID), zap.Error(err))
	}
	s.publisher.PublishLog(ctx, "Booking cancelled "+booking.ID)

	return booking, nil
}

// Get returns a single booking.
func (s *BookingService) Get(id string) (model.Booking, error) {
	return s.repo.Get(id)
}

// List returns every registered booking.
func (s *BookingService) List() []model.Booking {
	return s.repo.List()
}

// RegisterPaymentAccepted applies the payment-accepted transition:
// status PAID, payment status PAID. The payment id is recorded for
// correlation. Unknown ids report repository.ErrNotFound.
func (s *BookingService) RegisterPaymentAccepted(bookingID, paymentID string) error {
	_, err := s.repo.Update(bookingID, func(b *model.Booking) error {
		b.Status = model.StatusPaid
		b.PaymentStatus = model.PaymentPaid
		b.PaymentID = paymentID
		return nil
	})
	return err
}

// RegisterPaymentRejected applies the payment-rejected transition:
// status REJECTED, payment status REJECTED.
func (s *BookingService) RegisterPaymentRejected(bookingID, paymentID string) error {
	_, err := s.repo.Update(bookingID, func(b *model.Booking) error {
		b.Status = model.StatusRejected
		b.PaymentStatus = model.PaymentRejected
		b.PaymentID = paymentID
		return nil
	})
	return err
}

// RegisterTicketsGenerated attaches the ticket batch and moves the
// booking to BOOKED. The payment status is left unchanged.
func (s *BookingService) RegisterTicketsGenerated(bookingID string, batch *model.TicketBatch) error {
	_, err := s.repo.Update(bookingID, func(b *model.Booking) error {
		b.Tickets = batch
		b.Status = model.StatusBooked
		return nil
	})
	return err
}

// newBookingID produces ids in the form RES-XXXXXXXX (8 uppercase hex).
func newBookingID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RES-" + strings.ToUpper(hex[:8])
}
