package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
)

// ----- stubs shared by the service tests -----

type stubItineraries struct {
	itinerary *model.Itinerary
	err       error
}

func (s *stubItineraries) Get(ctx context.Context, destinationID int) (*model.Itinerary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.itinerary, nil
}

type stubPayments struct {
	resp *model.PaymentLinkResponse
	err  error
}

func (s *stubPayments) CreatePaymentLink(ctx context.Context, req model.PaymentLinkRequest) (*model.PaymentLinkResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type publishedEvent struct {
	Exchange   string
	RoutingKey string
	Payload    interface{}
}

// recordingPublisher captures everything published so tests can assert
// on the emitted events without a broker.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	logs   []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Exchange: exchange, RoutingKey: routingKey, Payload: payload})
	return nil
}

func (p *recordingPublisher) PublishLog(ctx context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = append(p.logs, message)
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func newTestService(itineraries ItineraryLookup, payments PaymentLinker, pub EventPublisher) (*BookingService, *repository.BookingRepo) {
	repo := repository.NewBookingRepo()
	svc := NewBookingService(repo, itineraries, payments, pub,
		"direct", "booking_created", "booking_cancelled", zap.NewNop())
	return svc, repo
}

func defaultItinerary() *model.Itinerary {
	return &model.Itinerary{
		ID:              7,
		Destination:     "Mar Adriatico",
		Origin:          "Veneza",
		CabinCost:       4150.0,
		AvailableCabins: 5,
	}
}

func createInput() CreateBookingInput {
	return CreateBookingInput{
		BoardingDate:       "2026-09-15",
		DestinationID:      7,
		NumberOfCabins:     2,
		NumberOfPassengers: 5,
		Origin:             "Veneza",
		CustomerEmail:      "ana@example.com",
		CustomerName:       "Ana",
	}
}

var bookingIDPattern = regexp.MustCompile(`^RES-[0-9A-F]{8}$`)

// ----- creation -----

func TestCreateBooking(t *testing.T) {
	pub := &recordingPublisher{}
	payments := &stubPayments{resp: &model.PaymentLinkResponse{PaymentID: "PAY-1", PaymentLink: "http://pay/1"}}
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, payments, pub)

	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	assert.Regexp(t, bookingIDPattern, booking.ID)
	assert.NotEqual(t, booking.UUID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, model.StatusCreated, booking.Status)
	assert.Equal(t, model.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, 4150.0*2, booking.TotalCost)
	assert.Equal(t, "PAY-1", booking.PaymentID)
	assert.Equal(t, "http://pay/1", booking.PaymentLink)

	events := pub.published()
	require.Len(t, events, 1)
	assert.Equal(t, "direct", events[0].Exchange)
	assert.Equal(t, "booking_created", events[0].RoutingKey)
	created, ok := events[0].Payload.(model.BookingEvent)
	require.True(t, ok)
	assert.Equal(t, 7, created.DestinationID)
	assert.Equal(t, 2, created.NumberOfCabins)
}

func TestCreateBookingNotEnoughCabins(t *testing.T) {
	itinerary := defaultItinerary()
	itinerary.AvailableCabins = 1
	pub := &recordingPublisher{}
	svc, repo := newTestService(&stubItineraries{itinerary: itinerary}, nil, pub)

	_, err := svc.Create(context.Background(), createInput())
	assert.ErrorIs(t, err, ErrNotEnoughCabins)
	assert.Empty(t, repo.List(), "no booking may be registered on capacity failure")
	assert.Empty(t, pub.published())
}

func TestCreateBookingItineraryLookupFails(t *testing.T) {
	lookupErr := errors.New("itinerary service down")
	svc, repo := newTestService(&stubItineraries{err: lookupErr}, nil, &recordingPublisher{})

	_, err := svc.Create(context.Background(), createInput())
	assert.ErrorIs(t, err, lookupErr)
	assert.Empty(t, repo.List())
}

func TestCreateBookingPaymentLinkFailureIsNotFatal(t *testing.T) {
	payments := &stubPayments{err: errors.New("payments down")}
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, payments, &recordingPublisher{})

	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	assert.Empty(t, booking.PaymentLink)
	assert.Equal(t, model.StatusCreated, booking.Status)
}

func TestCreateBookingPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, repo := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, pub)

	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	_, err = repo.Get(booking.ID)
	assert.NoError(t, err, "booking stays registered even when the event is lost")
}

// ----- cancellation -----

func TestCancelBooking(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, pub)
	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, model.PaymentPending, cancelled.PaymentStatus, "payment status unchanged on cancel")

	events := pub.published()
	require.Len(t, events, 2)
	assert.Equal(t, "booking_cancelled", events[1].RoutingKey)
}

func TestCancelBookingTwiceIsRejected(t *testing.T) {
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), booking.ID)
	assert.ErrorIs(t, err, repository.ErrTerminalState)
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	_, err := svc.Cancel(context.Background(), "RES-DEADBEEF")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// ----- event-driven transitions -----

func TestRegisterPaymentAccepted(t *testing.T) {
	svc, repo := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPaymentAccepted(booking.ID, "PAY-77"))

	got, err := repo.Get(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, "PAY-77", got.PaymentID)
}

func TestRegisterPaymentRejected(t *testing.T) {
	svc, repo := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)

	require.NoError(t, svc.RegisterPaymentRejected(booking.ID, "PAY-77"))

	got, err := repo.Get(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, model.PaymentRejected, got.PaymentStatus)
}

func TestRegisterPaymentUnknownBooking(t *testing.T) {
	svc, _ := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	assert.ErrorIs(t, svc.RegisterPaymentAccepted("RES-DEADBEEF", "PAY-1"), repository.ErrNotFound)
	assert.ErrorIs(t, svc.RegisterPaymentRejected("RES-DEADBEEF", "PAY-1"), repository.ErrNotFound)
}

func TestRegisterTicketsGenerated(t *testing.T) {
	svc, repo := newTestService(&stubItineraries{itinerary: defaultItinerary()}, nil, &recordingPublisher{})
	booking, err := svc.Create(context.Background(), createInput())
	require.NoError(t, err)
	require.NoError(t, svc.RegisterPaymentAccepted(booking.ID, "PAY-77"))

	batch := &model.TicketBatch{BookingID: booking.ID, Tickets: make([]model.Ticket, 5)}
	require.NoError(t, svc.RegisterTicketsGenerated(booking.ID, batch))

	got, err := repo.Get(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, got.Status)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus, "payment status unchanged by tickets")
	require.NotNil(t, got.Tickets)
	assert.Len(t, got.Tickets.Tickets, 5)
}
