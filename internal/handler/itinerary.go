package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/client"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// ItineraryHandler proxies catalog queries to the itinerary microservice
// so the frontend talks to a single origin.
type ItineraryHandler struct {
	Client *client.ItineraryClient
}

// NewItineraryHandler returns a handler backed by the given client.
func NewItineraryHandler(c *client.ItineraryClient) *ItineraryHandler {
	return &ItineraryHandler{Client: c}
}

// List forwards the supported filter query parameters and returns the
// matching itineraries.
func (h *ItineraryHandler) List(c echo.Context) error {
	filter := model.ItineraryFilter{
		Origin:      c.QueryParam("origin"),
		Destination: c.QueryParam("destination"),
		Date:        c.QueryParam("date"),
		Continent:   c.QueryParam("continent"),
	}
	if v := c.QueryParam("min_cabins"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinCabins = n
		}
	}

	list, err := h.Client.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "itinerary service unavailable"})
	}
	return c.JSON(http.StatusOK, list)
}
