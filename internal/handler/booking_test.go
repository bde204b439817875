package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/client"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/service"
)

type fakeItineraries struct {
	itinerary *model.Itinerary
	err       error
}

func (f *fakeItineraries) Get(ctx context.Context, destinationID int) (*model.Itinerary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.itinerary, nil
}

type nullPublisher struct{}

func (nullPublisher) Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	return nil
}
func (nullPublisher) PublishLog(ctx context.Context, message string) {}

func newBookingHandler(itineraries service.ItineraryLookup) *BookingHandler {
	svc := service.NewBookingService(repository.NewBookingRepo(), itineraries, nil,
		nullPublisher{}, "direct", "booking_created", "booking_cancelled", zap.NewNop())
	return NewBookingHandler(svc)
}

func availableItinerary() *model.Itinerary {
	return &model.Itinerary{ID: 7, CabinCost: 4150, AvailableCabins: 5}
}

const validBookingBody = `{
	"boarding_date": "2026-09-15",
	"destination_id": 7,
	"number_of_cabins": 2,
	"number_of_passengers": 5,
	"origin": "Santos",
	"customer_email": "ana@example.com",
	"customer_name": "Ana"
}`

func doJSON(h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateBookingEndpoint(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: availableItinerary()})

	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var booking model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.True(t, strings.HasPrefix(booking.ID, "RES-"))
	assert.Equal(t, model.StatusCreated, booking.Status)
	assert.InDelta(t, 8300.0, booking.TotalCost, 0.001)
}

func TestCreateBookingValidation(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: availableItinerary()})

	cases := map[string]string{
		"missing destination":  `{"number_of_cabins":1,"number_of_passengers":2,"boarding_date":"2026-09-15","customer_email":"a@b.c","customer_name":"A"}`,
		"zero passengers":      `{"destination_id":7,"number_of_cabins":1,"number_of_passengers":0,"boarding_date":"2026-09-15","customer_email":"a@b.c","customer_name":"A"}`,
		"zero cabins":          `{"destination_id":7,"number_of_cabins":0,"number_of_passengers":2,"boarding_date":"2026-09-15","customer_email":"a@b.c","customer_name":"A"}`,
		"missing date":         `{"destination_id":7,"number_of_cabins":1,"number_of_passengers":2,"customer_email":"a@b.c","customer_name":"A"}`,
		"bad email":            `{"destination_id":7,"number_of_cabins":1,"number_of_passengers":2,"boarding_date":"2026-09-15","customer_email":"not-an-email","customer_name":"A"}`,
		"missing name":         `{"destination_id":7,"number_of_cabins":1,"number_of_passengers":2,"boarding_date":"2026-09-15","customer_email":"a@b.c"}`,
		"not json":             `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(h.Create, http.MethodPost, "/bookings", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBookingNotEnoughCabins(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: &model.Itinerary{ID: 7, CabinCost: 4150, AvailableCabins: 1}})
	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough cabins")
}

func TestCreateBookingUnknownItinerary(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{err: client.ErrItineraryNotFound})
	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBookingItineraryServiceDown(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{err: assert.AnError})
	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: availableItinerary()})
	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))

	cancel := func() *httptest.ResponseRecorder {
		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/bookings/"+booking.ID, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues(booking.ID)
		require.NoError(t, h.Cancel(c))
		return rec
	}

	first := cancel()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), string(model.StatusCancelled))

	// A replayed cancel hits the terminal-state guard.
	second := cancel()
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestCancelUnknownBooking(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: availableItinerary()})
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/bookings/RES-DEADBEEF", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("RES-DEADBEEF")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAndListBookings(t *testing.T) {
	h := newBookingHandler(&fakeItineraries{itinerary: availableItinerary()})
	rec := doJSON(h.Create, http.MethodPost, "/bookings", validBookingBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+booking.ID, nil)
	getRec := httptest.NewRecorder()
	c := e.NewContext(req, getRec)
	c.SetParamNames("id")
	c.SetParamValues(booking.ID)
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, getRec.Code)

	listRec := doJSON(h.List, http.MethodGet, "/bookings", "")
	assert.Equal(t, http.StatusOK, listRec.Code)
	var all []model.Booking
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestMarketingSubscriptionEndpoints(t *testing.T) {
	m := NewMarketingHandler(service.NewMarketingService(repository.NewSubscriberRepo(), zap.NewNop()))

	rec := doJSON(m.Subscribe, http.MethodPost, "/marketing/subscribe", `{"user_id":"42"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(m.Subscribe, http.MethodPost, "/marketing/subscribe", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(m.Unsubscribe, http.MethodDelete, "/marketing/unsubscribe", `{"user_id":"42"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
