package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	routesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, routesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		routesTTL: routesTTL,
	}
}

func (c *RedisCache) GetRoutes(ctx context.Context) ([]domain.Route, error) {
	data, err := c.client.Get(ctx, routesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var routes []domain.Route
	if err := json.Unmarshal(data, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (c *RedisCache) SetRoutes(ctx context.Context, routes []domain.Route) error {
	payload, err := json.Marshal(routes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routesKey(), payload, c.routesTTL).Err()
}

// AcquireBookingLock takes the cross-process advisory lock serializing state
// transitions for one booking. Returns false when another request holds it.
func (c *RedisCache) AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, bookingLockKey(bookingID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseBookingLock(ctx context.Context, bookingID string) error {
	return c.client.Del(ctx, bookingLockKey(bookingID)).Err()
}

func routesKey() string {
	return "cache:routes"
}

func bookingLockKey(bookingID string) string {
	return fmt.Sprintf("lock:booking:%s", bookingID)
}
