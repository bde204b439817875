// The central logger: drains the event-log queue and prints one
// "[sender]: message" line per event, giving a single chronological view
// of what every service in the choreography is doing.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/config"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/logger"
)

const queueLogger = "logger_queue"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	topology := broker.Topology{Bindings: []broker.QueueBinding{
		{Queue: queueLogger, Exchange: broker.DirectExchange, RoutingKey: cfg.LogsRoutingKey},
	}}
	brokerClient := broker.NewClient(cfg.AMQPURL(), "logger", cfg.LogsRoutingKey, topology, zl)

	consumer := broker.NewConsumerLoop(brokerClient, zl)
	consumer.Register(queueLogger, func(ctx context.Context, msg broker.Message) error {
		sender := msg.Sender
		if sender == "" {
			sender = "unknown"
		}
		fmt.Printf("[%s]: %s\n", sender, msg.Body)
		return nil
	})
	if err := consumer.Start(); err != nil {
		zl.Fatal("consumer start", zap.Error(err))
	}
	zl.Info("logging service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	consumer.Stop()
	zl.Info("logging service stopped")
}
