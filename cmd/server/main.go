// The booking service: HTTP API over the in-memory booking registry plus
// the background consumer that drives the booking state machine from
// payment, ticket and promotion events.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/cache"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/client"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/config"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/crypto"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/handler"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/logger"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/router"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/service"
)

// Queue names owned by the booking service. Routing keys are
// configuration; queue names only matter to their consumer.
const (
	queuePaymentAccepted = "payment_accepted"
	queuePaymentRejected = "payment_rejected"
	queueTicketGenerated = "ticket_generated"
	queuePromotions      = "promotions"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// The trusted key is the one startup dependency that is allowed to be
	// fatal: without it every payment event would have to be dropped.
	verifier, err := crypto.NewVerifier(cfg.PublicKeyPath)
	if err != nil {
		zl.Fatal("payment authority key", zap.Error(err))
	}

	topology := broker.Topology{Bindings: []broker.QueueBinding{
		{Queue: queuePaymentAccepted, Exchange: broker.DirectExchange, RoutingKey: cfg.PaymentAcceptedRoutingKey},
		{Queue: queuePaymentRejected, Exchange: broker.DirectExchange, RoutingKey: cfg.PaymentRejectedRoutingKey},
		{Queue: queueTicketGenerated, Exchange: broker.DirectExchange, RoutingKey: cfg.TicketGeneratedRoutingKey},
		{Queue: queuePromotions, Exchange: broker.TopicExchange, RoutingKey: cfg.MarketingRoutingKey + ".#"},
	}}
	brokerClient := broker.NewClient(cfg.AMQPURL(), "booking", cfg.LogsRoutingKey, topology, zl)

	redisClient := cache.NewRedisClient() // nil disables caching
	if redisClient == nil {
		zl.Warn("redis unavailable, itinerary cache disabled")
	}
	itineraries := client.NewItineraryClient(cfg.ItineraryBaseURL, cache.NewItineraryCache(redisClient, 30*time.Second))
	payments := client.NewPaymentsClient(cfg.PaymentsBaseURL)

	bookingRepo := repository.NewBookingRepo()
	subscriberRepo := repository.NewSubscriberRepo()

	bookings := service.NewBookingService(
		bookingRepo, itineraries, payments, brokerClient,
		broker.DirectExchange, cfg.BookingCreatedRoutingKey, cfg.BookingCancelledRoutingKey,
		zl,
	)
	marketing := service.NewMarketingService(subscriberRepo, zl)
	events := service.NewEventHandlers(bookings, marketing, verifier, brokerClient, zl)

	consumer := broker.NewConsumerLoop(brokerClient, zl)
	consumer.Register(queuePaymentAccepted, events.HandlePaymentAccepted)
	consumer.Register(queuePaymentRejected, events.HandlePaymentRejected)
	consumer.Register(queueTicketGenerated, events.HandleTicketGenerated)
	consumer.Register(queuePromotions, events.HandlePromotion)
	if err := consumer.Start(); err != nil {
		zl.Fatal("consumer start", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e,
		handler.NewBookingHandler(bookings),
		handler.NewItineraryHandler(itineraries),
		handler.NewMarketingHandler(marketing),
	)

	go func() {
		addr := ":" + cfg.APIPort
		zl.Info("booking service listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			zl.Info("http server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	consumer.Stop() // joins the worker and closes the broker connection
	zl.Info("booking service stopped")
}
