package repository

import "sync"

// SubscriberRepo holds the marketing subscriber list. Subscriptions come
// in over HTTP while the promotions consumer iterates the list, so access
// is guarded the same way as the booking registry.
type SubscriberRepo struct {
	mu          sync.RWMutex
	subscribers map[string]struct{}
}

// NewSubscriberRepo returns an empty subscriber list.
func NewSubscriberRepo() *SubscriberRepo {
	return &SubscriberRepo{subscribers: make(map[string]struct{})}
}

// Subscribe adds a user. Reports false when the user was already present.
func (r *SubscriberRepo) Subscribe(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[userID]; ok {
		return false
	}
	r.subscribers[userID] = struct{}{}
	return true
}

// Unsubscribe removes a user. Reports false when the user was not present.
func (r *SubscriberRepo) Unsubscribe(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[userID]; !ok {
		return false
	}
	delete(r.subscribers, userID)
	return true
}

// All returns the current subscriber ids.
func (r *SubscriberRepo) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.subscribers))
	for id := range r.subscribers {
		out = append(out, id)
	}
	return out
}
