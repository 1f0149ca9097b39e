package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"messagesapp/internal/model"
	"messagesapp/internal/repository"

	"github.com/rs/zerolog"
)

const serviceKeyPrefix = "service:"

// ServiceCache is the read-through cache over the service registry, keyed by
// service id.
type ServiceCache struct {
	store  Store
	repo   repository.ServiceRepository
	ttl    time.Duration
	logger zerolog.Logger
}

func NewServiceCache(store Store, repo repository.ServiceRepository, ttl time.Duration, logger zerolog.Logger) *ServiceCache {
	return &ServiceCache{
		store:  store,
		repo:   repo,
		ttl:    ttl,
		logger: logger.With().Str("cache", "service").Logger(),
	}
}

// GetOrCache resolves a service, preferring the cache. A service missing
// from the registry yields a typed NotFoundError carrying the service id.
func (c *ServiceCache) GetOrCache(ctx context.Context, serviceID string) (*model.Service, error) {
	return getOrCache(ctx, c.store, serviceKeyPrefix+serviceID, c.ttl, func(ctx context.Context) (*model.Service, error) {
		service, err := c.repo.FindLastVersionByServiceID(ctx, serviceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &NotFoundError{Kind: "service", Key: serviceID}
			}
			return nil, fmt.Errorf("resolving service %s: %w", serviceID, err)
		}
		return service, nil
	}, c.logger)
}
