package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wanderplan/wanderplan/internal/trip"
)

// DefaultTTL bounds how long an assembled trip plan stays valid.
const DefaultTTL = time.Hour

// Cache wraps a Redis client and provides typed get/set/delete for trip
// plans keyed by (city, days).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a Cache with the given TTL; ttl <= 0 falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Connect parses redisURL, creates a client, and verifies connectivity
// with a ping bounded by a short timeout.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// key normalizes the destination name (case-fold + trim) so that
// "Paris" and " paris " address the same entry.
func key(city string, days int) string {
	return fmt.Sprintf("trip:%s:%d", strings.ToLower(strings.TrimSpace(city)), days)
}

// Get retrieves a cached trip plan. Returns nil, nil on a cache miss.
// The returned plan carries Cached=false as stored; the caller overlays
// the flag when serving a hit.
func (c *Cache) Get(ctx context.Context, city string, days int) (*trip.TripPlan, error) {
	val, err := c.client.Get(ctx, key(city, days)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for city %s: %w", city, err)
	}

	var plan trip.TripPlan
	if err := json.Unmarshal([]byte(val), &plan); err != nil {
		return nil, fmt.Errorf("unmarshaling cached plan for city %s: %w", city, err)
	}

	return &plan, nil
}

// Set stores a trip plan with the configured TTL. The cache flag is
// forced to false on the stored copy regardless of the input.
func (c *Cache) Set(ctx context.Context, city string, days int, plan *trip.TripPlan) error {
	if plan == nil {
		return nil
	}

	stored := *plan
	stored.Cached = false

	b, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshaling plan for city %s: %w", city, err)
	}

	if err := c.client.Set(ctx, key(city, days), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set for city %s: %w", city, err)
	}

	return nil
}

// Delete removes the cached entry for the given city and trip length.
func (c *Cache) Delete(ctx context.Context, city string, days int) error {
	if err := c.client.Del(ctx, key(city, days)).Err(); err != nil {
		return fmt.Errorf("cache delete for city %s: %w", city, err)
	}
	return nil
}
