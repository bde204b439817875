// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"log" // log is used to report configuration errors and halt execution
	"os"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Routing keys are configuration rather than
// constants because every service in the deployment must agree on them.
type Config struct {
	Env     string // application environment (e.g. "dev", "prod")
	APIPort string // HTTP port to listen on

	RabbitUser string // broker username
	RabbitPass string // broker password
	RabbitHost string // broker host address
	RabbitPort string // broker port number

	LogsRoutingKey             string // free-text log events
	BookingCreatedRoutingKey   string // emitted when a booking is registered
	BookingCancelledRoutingKey string // emitted when a booking is cancelled
	PaymentAcceptedRoutingKey  string // consumed from the payment service
	PaymentRejectedRoutingKey  string // consumed from the payment service
	TicketGeneratedRoutingKey  string // consumed from the ticket service
	MarketingRoutingKey        string // topic root for promotion fan-out

	ItineraryBaseURL string // itinerary microservice base URL
	PaymentsBaseURL  string // payments microservice base URL

	PublicKeyPath string // PKCS#1 PEM public key of the payment authority
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:     getenv("APP_ENV", "dev"),
		APIPort: must("API_PORT"),

		RabbitUser: must("RABBITMQ_USER"),
		RabbitPass: must("RABBITMQ_PASS"),
		RabbitHost: must("RABBITMQ_HOST"),
		RabbitPort: must("RABBITMQ_PORT"),

		LogsRoutingKey:             must("LOGS_ROUTING_KEY"),
		BookingCreatedRoutingKey:   must("BOOKING_CREATED_ROUTING_KEY"),
		BookingCancelledRoutingKey: must("BOOKING_CANCELLED_ROUTING_KEY"),
		PaymentAcceptedRoutingKey:  must("PAYMENT_ACCEPTED_ROUTING_KEY"),
		PaymentRejectedRoutingKey:  must("PAYMENT_REJECTED_ROUTING_KEY"),
		TicketGeneratedRoutingKey:  must("TICKET_GENERATED_ROUTING_KEY"),
		MarketingRoutingKey:        must("MARKETING_ROUTING_KEY"),

		ItineraryBaseURL: getenv("ITINERARY_MS_URL", "http://itinerary:5004"),
		PaymentsBaseURL:  getenv("PAYMENTS_MS_URL", "http://payments:5002"),

		// Only the services that verify payment signatures need the key;
		// they fail fast in NewVerifier when the file is absent.
		PublicKeyPath: getenv("PAYMENTS_SERVICE_PUBLIC_KEY", ""),
	}
}

// AMQPURL assembles the broker dial string from the individual parts.
func (c Config) AMQPURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.RabbitUser, c.RabbitPass, c.RabbitHost, c.RabbitPort)
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// getenv returns the value of an optional environment variable, falling
// back to def when it is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
