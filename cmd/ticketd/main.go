// The ticket worker: consumes payment-accepted events on its own durable
// queue, verifies the payment authority's signature, and publishes one
// ticket per passenger partitioned across the booked cabins.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/config"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/crypto"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/logger"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/service"
)

// The ticket service binds its own queue to the payment-accepted routing
// key so it receives every event the booking service does.
const queuePaymentAcceptedTicket = "payment_accepted_ticket"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	verifier, err := crypto.NewVerifier(cfg.PublicKeyPath)
	if err != nil {
		zl.Fatal("payment authority key", zap.Error(err))
	}

	topology := broker.Topology{Bindings: []broker.QueueBinding{
		{Queue: queuePaymentAcceptedTicket, Exchange: broker.DirectExchange, RoutingKey: cfg.PaymentAcceptedRoutingKey},
	}}
	brokerClient := broker.NewClient(cfg.AMQPURL(), "ticket", cfg.LogsRoutingKey, topology, zl)

	tickets := service.NewTicketService(verifier, brokerClient,
		broker.DirectExchange, cfg.TicketGeneratedRoutingKey, zl)

	consumer := broker.NewConsumerLoop(brokerClient, zl)
	consumer.Register(queuePaymentAcceptedTicket, tickets.HandlePaymentAccepted)
	if err := consumer.Start(); err != nil {
		zl.Fatal("consumer start", zap.Error(err))
	}
	zl.Info("ticket service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	consumer.Stop()
	zl.Info("ticket service stopped")
}
