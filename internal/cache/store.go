// Package cache provides the read-through caches sitting in front of the
// service registry and the remote-content configuration store. Cache
// unavailability or corrupt cached entries never fail a request; they only
// cost a round trip to the source of record.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})
	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})
	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_errors_total",
		Help: "Total number of cache errors",
	}, []string{"cache"})
	cacheSets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_sets_total",
		Help: "Total number of cache sets",
	}, []string{"cache"})
)

// Store is the minimal cache backend contract: string payloads, per-key TTL.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisStore struct {
	client *redis.Client
	name   string
}

// NewRedisStore wraps a redis client as a Store. The name labels the
// store's metrics.
func NewRedisStore(client *redis.Client, name string) Store {
	return &redisStore{client: client, name: name}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.WithLabelValues(s.name).Inc()
			return "", false, nil
		}
		cacheErrors.WithLabelValues(s.name).Inc()
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	cacheHits.WithLabelValues(s.name).Inc()
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues(s.name).Inc()
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	cacheSets.WithLabelValues(s.name).Inc()
	return nil
}

// NotFoundError reports a key absent from the source of record. The cache
// layer returns it typed so callers can map it to a not-found response.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("empty %s, key=%s", e.Kind, e.Key)
}
