package repository

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

func testBooking(id string) *model.Booking {
	now := time.Now().UTC()
	return &model.Booking{
		ID:                 id,
		UUID:               uuid.New(),
		NumberOfPassengers: 2,
		NumberOfCabins:     1,
		DestinationID:      7,
		Status:             model.StatusCreated,
		PaymentStatus:      model.PaymentPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestBookingRepoInsertAndGet(t *testing.T) {
	repo := NewBookingRepo()
	repo.Insert(testBooking("RES-00000001"))

	got, err := repo.Get("RES-00000001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, got.Status)

	// Mutating the returned copy must not touch the registry.
	got.Status = model.StatusCancelled
	again, err := repo.Get("RES-00000001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, again.Status)
}

func TestBookingRepoGetUnknown(t *testing.T) {
	repo := NewBookingRepo()
	_, err := repo.Get("RES-DEADBEEF")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepoUpdateRefreshesTimestamp(t *testing.T) {
	repo := NewBookingRepo()
	b := testBooking("RES-00000001")
	b.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	repo.Insert(b)

	updated, err := repo.Update("RES-00000001", func(b *model.Booking) error {
		b.Status = model.StatusPaid
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, updated.Status)
	assert.WithinDuration(t, time.Now().UTC(), updated.UpdatedAt, time.Minute)
}

func TestBookingRepoUpdateErrorLeavesBookingUntouched(t *testing.T) {
	repo := NewBookingRepo()
	repo.Insert(testBooking("RES-00000001"))

	_, err := repo.Update("RES-00000001", func(b *model.Booking) error {
		b.Status = model.StatusCancelled
		return ErrTerminalState
	})
	assert.ErrorIs(t, err, ErrTerminalState)

	got, err := repo.Get("RES-00000001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, got.Status)
}

func TestBookingRepoUpdateUnknown(t *testing.T) {
	repo := NewBookingRepo()
	_, err := repo.Update("RES-DEADBEEF", func(b *model.Booking) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

// The registry is mutated by the HTTP path and the consumer goroutine at
// the same time; this exercises both sides under the race detector.
func TestBookingRepoConcurrentAccess(t *testing.T) {
	repo := NewBookingRepo()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("RES-%08X", i)
			repo.Insert(testBooking(id))
			_, err := repo.Update(id, func(b *model.Booking) error {
				b.Status = model.StatusPaid
				b.PaymentStatus = model.PaymentPaid
				return nil
			})
			assert.NoError(t, err)
			repo.List()
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.List(), n)
	for _, b := range repo.List() {
		assert.Equal(t, model.StatusPaid, b.Status)
	}
}

func TestSubscriberRepo(t *testing.T) {
	repo := NewSubscriberRepo()

	assert.True(t, repo.Subscribe("42"))
	assert.False(t, repo.Subscribe("42")) // already present
	assert.True(t, repo.Subscribe("7"))
	assert.ElementsMatch(t, []string{"42", "7"}, repo.All())

	assert.True(t, repo.Unsubscribe("42"))
	assert.False(t, repo.Unsubscribe("42")) // already gone
	assert.ElementsMatch(t, []string{"7"}, repo.All())
}
