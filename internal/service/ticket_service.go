package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/crypto"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// TicketService runs in the ticket worker. It consumes verified
// payment-accepted events, issues one ticket per passenger partitioned
// across the booked cabins, and publishes the batch on the
// tickets-generated routing key.
type TicketService struct {
	verifier  *crypto.Verifier
	publisher EventPublisher
	logger    *zap.Logger

	directExchange string
	generatedKey   string
}

// NewTicketService wires the ticket generator.
func NewTicketService(verifier *crypto.Verifier, publisher EventPublisher, directExchange, generatedKey string, logger *zap.Logger) *TicketService {
	return &TicketService{
		verifier:       verifier,
		publisher:      publisher,
		logger:         logger,
		directExchange: directExchange,
		generatedKey:   generatedKey,
	}
}

// PartitionPassengers splits passengers across cabins as evenly as
// possible: every cabin gets passengers/cabins, and the first
// passengers%cabins cabins get one extra.
func PartitionPassengers(passengers, cabins int) []int {
	if cabins <= 0 {
		return nil
	}
	sizes := make([]int, cabins)
	base := passengers / cabins
	extra := passengers % cabins
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes
}

// BuildBatch issues the tickets for a paid transaction. Ticket ids number
// the passengers from zero; cabin numbers start at one. The departure
// date defaults to the issuance time: the transaction does not carry the
// boarding date.
func BuildBatch(tx model.Transaction, issuedAt time.Time) model.TicketBatch {
	cabins := tx.NumberOfCabins
	if cabins <= 0 {
		cabins = 1
	}
	sizes := PartitionPassengers(tx.NumberOfPassengers, cabins)
	departure := issuedAt.Format("2006-01-02 15:04:05")

	tickets := make([]model.Ticket, 0, tx.NumberOfPassengers)
	index := 0
	for cabin, count := range sizes {
		for i := 0; i < count; i++ {
			tickets = append(tickets, model.Ticket{
				ID:            index,
				UUID:          uuid.New(),
				BookingID:     tx.BookingID,
				CabinNumber:   strconv.Itoa(cabin + 1),
				DepartureDate: departure,
				IssuedAt:      issuedAt,
			})
			index++
		}
	}
	return model.TicketBatch{
		Tickets:   tickets,
		BookingID: tx.BookingID,
		IssuedAt:  issuedAt,
	}
}

// HandlePaymentAccepted is the ticket worker's queue handler. Only events
// carrying a valid payment-authority signature produce tickets; a bad
// signature is logged on the event log and the message is dropped.
func (s *TicketService) HandlePaymentAccepted(ctx context.Context, msg broker.Message) error {
	s.publisher.PublishLog(ctx, "Payment Accepted Received")

	var event model.PaymentEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode payment event: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(event.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	canonical, err := crypto.CanonicalJSON(event.Transaction)
	if err != nil {
		return fmt.Errorf("canonicalize transaction: %w", err)
	}

	var tx model.Transaction
	if err := json.Unmarshal(event.Transaction, &tx); err != nil {
		return fmt.Errorf("decode transaction: %w", err)
	}

	if !s.verifier.Verify(canonical, sig) {
		s.publisher.PublishLog(ctx, fmt.Sprintf(
			"ERROR: Payment accepted - signature invalid! transaction_id: %s for booking_id %s", tx.ID, tx.BookingID))
		s.logger.Warn("payment event signature invalid, dropped",
			zap.String("transaction_id", tx.ID), zap.String("booking_id", tx.BookingID))
		return nil
	}

	s.publisher.PublishLog(ctx, fmt.Sprintf(
		"Payment validated - generating tickets! transaction_id: %s for booking_id %s", tx.ID, tx.BookingID))

	batch := BuildBatch(tx, time.Now().UTC())
	if err := s.publisher.Publish(ctx, s.directExchange, s.generatedKey, batch); err != nil {
		return fmt.Errorf("publish ticket batch: %w", err)
	}
	s.logger.Info("ticket batch published",
		zap.String("booking_id", tx.BookingID), zap.Int("tickets", len(batch.Tickets)))
	return nil
}
