package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/service"
)

// MarketingHandler exposes the promotion subscription endpoints.
type MarketingHandler struct {
	Svc *service.MarketingService
}

// NewMarketingHandler returns a handler backed by the given service.
func NewMarketingHandler(svc *service.MarketingService) *MarketingHandler {
	return &MarketingHandler{Svc: svc}
}

type subscriptionReq struct {
	UserID string `json:"user_id"`
}

// Subscribe adds a user to the promotion notification list.
func (h *MarketingHandler) Subscribe(c echo.Context) error {
	var req subscriptionReq
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	h.Svc.Subscribe(req.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "subscribed to marketing notifications"})
}

// Unsubscribe removes a user from the promotion notification list.
func (h *MarketingHandler) Unsubscribe(c echo.Context) error {
	var req subscriptionReq
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	h.Svc.Unsubscribe(req.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "unsubscribed from marketing notifications"})
}
