// The promotions service: a single endpoint that publishes promotion
// events to the topic exchange under <marketing-root>.<destination_id>,
// so any queue bound with the right pattern receives them.
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/config"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/logger"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

type createPromotionReq struct {
	DestinationID int     `json:"destination_id"`
	NewCost       float64 `json:"new_cost"`
	BoardingDate  string  `json:"boarding_date"`
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Publisher only: no queues to declare, exchanges come with the
	// shared topology declaration.
	brokerClient := broker.NewClient(cfg.AMQPURL(), "promotions", cfg.LogsRoutingKey, broker.Topology{}, zl)
	defer brokerClient.Close()

	e := echo.New()
	e.HideBanner = true

	e.POST("/promotion", func(c echo.Context) error {
		var req createPromotionReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		switch {
		case req.DestinationID <= 0:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "destination_id required"})
		case req.NewCost <= 0:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_cost required"})
		case req.BoardingDate == "":
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "boarding_date required"})
		}

		promotion := model.Promotion{
			ID:            uuid.New().String(),
			DestinationID: req.DestinationID,
			BoardingDate:  req.BoardingDate,
			CreatedAt:     time.Now().UTC().Format("2006-01-02 15:04:05"),
			NewCost:       req.NewCost,
		}

		ctx := c.Request().Context()
		brokerClient.PublishLog(ctx, fmt.Sprintf("Creating promotion to destination %d", promotion.DestinationID))

		routingKey := fmt.Sprintf("%s.%d", cfg.MarketingRoutingKey, promotion.DestinationID)
		if err := brokerClient.Publish(ctx, broker.TopicExchange, routingKey, promotion); err != nil {
			zl.Error("promotion publish failed", zap.String("routing_key", routingKey), zap.Error(err))
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "broker unavailable"})
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"status":    "success",
			"message":   "promotion created successfully",
			"promotion": promotion,
		})
	})

	addr := ":" + cfg.APIPort
	zl.Info("promotions service listening", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		zl.Fatal("http server", zap.Error(err))
	}
}
