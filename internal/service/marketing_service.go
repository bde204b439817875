package service

import (
	"go.uber.org/zap"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/repository"
)

// MarketingService keeps the subscriber list and fans promotion payloads
// out to it. Notification is a log line per subscriber; an actual
// delivery channel (mail, push) is outside this system.
type MarketingService struct {
	subscribers *repository.SubscriberRepo
	logger      *zap.Logger
}

// NewMarketingService wires the marketing notifier.
func NewMarketingService(subscribers *repository.SubscriberRepo, logger *zap.Logger) *MarketingService {
	return &MarketingService{subscribers: subscribers, logger: logger}
}

// Subscribe adds a user to the promotion list. Reports false when the
// user was already subscribed.
func (s *MarketingService) Subscribe(userID string) bool {
	ok := s.subscribers.Subscribe(userID)
	if ok {
		s.logger.Info("user subscribed to promotions", zap.String("user_id", userID))
	}
	return ok
}

// Unsubscribe removes a user from the promotion list. Reports false when
// the user was not subscribed.
func (s *MarketingService) Unsubscribe(userID string) bool {
	ok := s.subscribers.Unsubscribe(userID)
	if ok {
		s.logger.Info("user unsubscribed from promotions", zap.String("user_id", userID))
	}
	return ok
}

// NotifyAll sends the raw promotion payload to every subscriber and
// returns how many were notified.
func (s *MarketingService) NotifyAll(payload []byte) int {
	users := s.subscribers.All()
	for _, id := range users {
		s.logger.Info("promotion notification",
			zap.String("user_id", id),
			zap.ByteString("promotion", payload))
	}
	return len(users)
}
