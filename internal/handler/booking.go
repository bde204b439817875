// Package handler contains the Echo HTTP handlers of the booking service.
// Handlers validate and translate; every business rule lives in the
// service layer.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/client"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/service"
)

// BookingHandler bundles dependencies for the booking endpoints.
type BookingHandler struct {
	Svc *service.BookingService
}

// NewBookingHandler returns a handler backed by the given service.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// ----- DTOs -----

type createBookingReq struct {
	BoardingDate       string `json:"boarding_date"`
	DestinationID      int    `json:"destination_id"`
	NumberOfCabins     int    `json:"number_of_cabins"`
	NumberOfPassengers int    `json:"number_of_passengers"`
	Origin             string `json:"origin"`
	CustomerEmail      string `json:"customer_email"`
	CustomerName       string `json:"customer_name"`
}

// Create validates the request, registers the booking and returns its
// serialized form. Malformed fields are rejected before any broker
// interaction.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	switch {
	case req.DestinationID <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "destination_id required"})
	case req.NumberOfPassengers <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_passengers must be positive"})
	case req.NumberOfCabins <= 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number_of_cabins must be positive"})
	case req.BoardingDate == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "boarding_date required"})
	case req.CustomerEmail == "" || !strings.Contains(req.CustomerEmail, "@"):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid customer_email required"})
	case req.CustomerName == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_name required"})
	}

	booking, err := h.Svc.Create(c.Request().Context(), service.CreateBookingInput{
		BoardingDate:       req.BoardingDate,
		DestinationID:      req.DestinationID,
		NumberOfCabins:     req.NumberOfCabins,
		NumberOfPassengers: req.NumberOfPassengers,
		Origin:             req.Origin,
		CustomerEmail:      req.CustomerEmail,
		CustomerName:       req.CustomerName,
	})
	if err != nil {
		switch {
		case errors.Is(err, client.ErrItineraryNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "itinerary not found"})
		case errors.Is(err, service.ErrNotEnoughCabins):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "not enough cabins available"})
		default:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "itinerary lookup failed"})
		}
	}
	return c.JSON(http.StatusCreated, booking)
}

// Cancel moves a booking to CANCELLED. A second cancel on the same id is
// rejected with 409; unknown ids return 404.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	booking, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrTerminalState):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking already in a terminal state"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}
	return c.JSON(http.StatusOK, booking)
}

// Get returns a single booking by id.
func (h *BookingHandler) Get(c echo.Context) error {
	booking, err := h.Svc.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, booking)
}

// List returns every registered booking.
func (h *BookingHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.List())
}
