package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/broker"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/crypto"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// EventHandlers decodes and authenticates messages at the consumer
// boundary before any state transition runs. Each method matches
// broker.Handler: a returned error means the message was dropped (the
// consumer logs it and moves on), never that the loop should stop.
type EventHandlers struct {
	bookings  *BookingService
	marketing *MarketingService
	verifier  *crypto.Verifier
	publisher EventPublisher
	logger    *zap.Logger
}

// NewEventHandlers wires the booking service's consumer handlers.
func NewEventHandlers(
	bookings *BookingService,
	marketing *MarketingService,
	verifier *crypto.Verifier,
	publisher EventPublisher,
	logger *zap.Logger,
) *EventHandlers {
	return &EventHandlers{
		bookings:  bookings,
		marketing: marketing,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
	}
}

// verifiedTransaction decodes a payment envelope and checks its
// signature over the canonical transaction bytes. A decoding problem is
// an error (malformed message); a signature mismatch returns ok=false
// and is handled by the caller as a drop, not a failure.
func (h *EventHandlers) verifiedTransaction(body []byte) (model.Transaction, bool, error) {
	var event model.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return model.Transaction{}, false, fmt.Errorf("decode payment event: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(event.Signature)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("decode signature: %w", err)
	}
	canonical, err := crypto.CanonicalJSON(event.Transaction)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("canonicalize transaction: %w", err)
	}
	var tx model.Transaction
	if err := json.Unmarshal(event.Transaction, &tx); err != nil {
		return model.Transaction{}, false, fmt.Errorf("decode transaction: %w", err)
	}
	return tx, h.verifier.Verify(canonical, sig), nil
}

// HandlePaymentAccepted authenticates a payment-accepted event and moves
// the target booking to PAID/PAID. Forged signatures are logged and
// dropped without touching any state.
func (h *EventHandlers) HandlePaymentAccepted(ctx context.Context, msg broker.Message) error {
	h.publisher.PublishLog(ctx, "Payment Accepted Received")

	tx, ok, err := h.verifiedTransaction(msg.Body)
	if err != nil {
		return err
	}
	if !ok {
		h.publisher.PublishLog(ctx, fmt.Sprintf(
			"ERROR: Payment accepted - signature invalid! transaction_id: %s for booking_id %s", tx.ID, tx.BookingID))
		h.logger.Warn("payment accepted signature invalid, dropped",
			zap.String("transaction_id", tx.ID), zap.String("booking_id", tx.BookingID))
		return nil
	}
	if err := h.bookings.RegisterPaymentAccepted(tx.BookingID, tx.ID); err != nil {
		return fmt.Errorf("payment accepted for %s: %w", tx.BookingID, err)
	}
	h.logger.Info("payment accepted applied", zap.String("booking_id", tx.BookingID))
	return nil
}

// HandlePaymentRejected authenticates a payment-rejected event and moves
// the target booking to REJECTED/REJECTED.
func (h *EventHandlers) HandlePaymentRejected(ctx context.Context, msg broker.Message) error {
	h.publisher.PublishLog(ctx, "Payment Rejected Received")

	tx, ok, err := h.verifiedTransaction(msg.Body)
	if err != nil {
		return err
	}
	if !ok {
		h.publisher.PublishLog(ctx, fmt.Sprintf(
			"ERROR: Payment rejected - signature invalid! transaction_id: %s for booking_id %s", tx.ID, tx.BookingID))
		h.logger.Warn("payment rejected signature invalid, dropped",
			zap.String("transaction_id", tx.ID), zap.String("booking_id", tx.BookingID))
		return nil
	}
	if err := h.bookings.RegisterPaymentRejected(tx.BookingID, tx.ID); err != nil {
		return fmt.Errorf("payment rejected for %s: %w", tx.BookingID, err)
	}
	h.logger.Info("payment rejected applied", zap.String("booking_id", tx.BookingID))
	return nil
}

// HandleTicketGenerated attaches a ticket batch to its booking. Ticket
// events are not signed; they originate inside the trust boundary.
func (h *EventHandlers) HandleTicketGenerated(ctx context.Context, msg broker.Message) error {
	var batch model.TicketBatch
	if err := json.Unmarshal(msg.Body, &batch); err != nil {
		return fmt.Errorf("decode ticket batch: %w", err)
	}
	if err := h.bookings.RegisterTicketsGenerated(batch.BookingID, &batch); err != nil {
		return fmt.Errorf("tickets generated for %s: %w", batch.BookingID, err)
	}
	h.logger.Info("tickets attached",
		zap.String("booking_id", batch.BookingID), zap.Int("tickets", len(batch.Tickets)))
	return nil
}

// HandlePromotion forwards a promotion to every marketing subscriber and
// reports the count on the event log.
func (h *EventHandlers) HandlePromotion(ctx context.Context, msg broker.Message) error {
	notified := h.marketing.NotifyAll(msg.Body)
	h.publisher.PublishLog(ctx, fmt.Sprintf("Promotion Received and emitted %d notifications", notified))
	return nil
}
