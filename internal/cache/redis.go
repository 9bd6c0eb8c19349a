package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds read-through copies of flights. Entries are dropped on
// every seat mutation, so the Postgres row stays authoritative.
type RedisCache struct {
	client     redis.Cmdable
	flightsTTL time.Duration
	flightTTL  time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		cfg.FlightsTTL(),
		cfg.FlightTTL(),
	)
}

// NewRedisCacheWithClient uses flightsTTL for the flight list and flightTTL
// for single flights. Keep flightTTL short: a fill racing a seat mutation may
// land after the mutation's Invalidate.
func NewRedisCacheWithClient(client redis.Cmdable, flightsTTL, flightTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL, flightTTL: flightTTL}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	var flights []domain.Flight
	ok, err := c.get(ctx, flightsKey(), &flights)
	if err != nil || !ok {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.set(ctx, flightsKey(), flights, c.flightsTTL)
}

func (c *RedisCache) GetFlight(ctx context.Context, id string) (*domain.Flight, error) {
	var flight domain.Flight
	ok, err := c.get(ctx, flightKey(id), &flight)
	if err != nil || !ok {
		return nil, err
	}
	return &flight, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	return c.set(ctx, flightKey(flight.ID), flight, c.flightTTL)
}

// Invalidate drops the cached flight and the cached flight list.
func (c *RedisCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, flightKey(id), flightsKey()).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func flightKey(id string) string {
	return "cache:flight:" + id
}
