package repository

import (
	"sync"
	"time"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// BookingRepo is the booking registry: a map keyed by booking id behind a
// RWMutex. Both the HTTP handlers and the consumer goroutine mutate it,
// so every mutation goes through Insert or Update and runs under the
// write lock. Reads hand out copies, never pointers into the map.
type BookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
}

// NewBookingRepo returns an empty registry.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]*model.Booking)}
}

// Insert registers a new booking under its id.
func (r *BookingRepo) Insert(b *model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *b
	r.bookings[b.ID] = &stored
}

// Get returns a copy of the booking with the given id, or ErrNotFound.
func (r *BookingRepo) Get(id string) (model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return *b, nil
}

// List returns copies of all registered bookings.
func (r *BookingRepo) List() []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out
}

// Update applies fn to the booking with the given id while holding the
// write lock, refreshing UpdatedAt when fn succeeds. The mutated copy is
// returned. fn returning an error leaves the booking untouched.
func (r *BookingRepo) Update(id string, fn func(*model.Booking) error) (model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if err := fn(b); err != nil {
		return model.Booking{}, err
	}
	b.UpdatedAt = time.Now().UTC()
	return *b, nil
}
