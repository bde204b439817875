// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/handler"
)

// RegisterRoutes wires every endpoint of the booking service onto the
// provided Echo instance. There is no authentication anywhere in this
// system; the API is the internal surface of the choreography demo.
func RegisterRoutes(e *echo.Echo, b *handler.BookingHandler, i *handler.ItineraryHandler, m *handler.MarketingHandler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Booking lifecycle. Cancellation is a DELETE on the resource.
	e.POST("/bookings", b.Create)
	e.GET("/bookings", b.List)
	e.GET("/bookings/:id", b.Get)
	e.DELETE("/bookings/:id", b.Cancel)

	// Filtered itinerary catalog, proxied to the itinerary service.
	e.GET("/itineraries", i.List)

	// Marketing subscription list used by the promotions consumer.
	e.POST("/marketing/subscribe", m.Subscribe)
	e.DELETE("/marketing/unsubscribe", m.Unsubscribe)
}
