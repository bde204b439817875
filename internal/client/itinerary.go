// Package client wraps the synchronous HTTP collaborators of the booking
// service: the itinerary catalog and the payments gateway.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/cache"
	"github.com/MatheusBurda/distributed-systems-cruise-booking/internal/model"
)

// ErrItineraryNotFound is returned when the itinerary service has no
// document for the requested destination id.
var ErrItineraryNotFound = errors.New("itinerary not found")

// ItineraryClient fetches itineraries from the itinerary microservice.
// Single-document lookups go through the Redis cache when one is
// configured.
type ItineraryClient struct {
	baseURL string
	http    *http.Client
	cache   *cache.ItineraryCache
}

// NewItineraryClient builds a client for the given base URL. itCache may
// be nil to disable caching.
func NewItineraryClient(baseURL string, itCache *cache.ItineraryCache) *ItineraryClient {
	return &ItineraryClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   itCache,
	}
}

// Get returns the itinerary for the given destination id.
func (c *ItineraryClient) Get(ctx context.Context, destinationID int) (*model.Itinerary, error) {
	if it, ok := c.cache.Get(ctx, destinationID); ok {
		return it, nil
	}

	u := fmt.Sprintf("%s/itineraries/%d", c.baseURL, destinationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itinerary service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrItineraryNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itinerary service: unexpected status %d", resp.StatusCode)
	}

	var it model.Itinerary
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("itinerary service: decode: %w", err)
	}
	c.cache.Set(ctx, &it)
	return &it, nil
}

// List returns the itineraries matching the given filter. Zero-valued
// filter fields are omitted from the query string.
func (c *ItineraryClient) List(ctx context.Context, filter model.ItineraryFilter) ([]model.Itinerary, error) {
	q := url.Values{}
	if filter.Origin != "" {
		q.Set("origin", filter.Origin)
	}
	if filter.Destination != "" {
		q.Set("destination", filter.Destination)
	}
	if filter.Date != "" {
		q.Set("date", filter.Date)
	}
	if filter.MinCabins > 0 {
		q.Set("min_cabins", strconv.Itoa(filter.MinCabins))
	}
	if filter.Continent != "" {
		q.Set("continent", filter.Continent)
	}

	u := c.baseURL + "/itineraries"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("itinerary service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("itinerary service: unexpected status %d", resp.StatusCode)
	}
	var list []model.Itinerary
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("itinerary service: decode: %w", err)
	}
	return list, nil
}
