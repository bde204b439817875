package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// ItineraryCache stores itinerary documents keyed by destination id with
// a TTL. A nil underlying client turns every call into a miss/no-op.
type ItineraryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItineraryCache wraps the given client. client may be nil.
func NewItineraryCache(client *redis.Client, ttl time.Duration) *ItineraryCache {
	return &ItineraryCache{client: client, ttl: ttl}
}

func itineraryKey(id int) string { return fmt.Sprintf("itinerary:%d", id) }

// Get returns the cached itinerary for id, or (nil, false) on a miss or
// any Redis/decoding failure.
func (c *ItineraryCache) Get(ctx context.Context, id int) (*model.Itinerary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, itineraryKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var it model.Itinerary
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, false
	}
	return &it, true
}

// Set stores the itinerary under its id. Failures are ignored; the cache
// is best effort.
func (c *ItineraryCache) Set(ctx context.Context, it *model.Itinerary) {
	if c == nil || c.client == nil || it == nil {
		return
	}
	data, err := json.Marshal(it)
	if err != nil {
		return
	}
	c.client.Set(ctx, itineraryKey(it.ID), data, c.ttl)
}
