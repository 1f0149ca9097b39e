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

const rcConfigurationKeyPrefix = "rc-configuration:"

// ErrInvalidConfigurationID reports a precondition lookup for which neither
// an explicit configuration id nor a service mapping exists.
var ErrInvalidConfigurationID = errors.New("configuration id is not valid")

// RCConfigurationCache is the read-through cache over remote-content
// configurations. Lookups are keyed by configuration id; when a message only
// carries its sender service id, the configured service-to-configuration map
// provides the id.
type RCConfigurationCache struct {
	store              Store
	repo               repository.RCConfigurationRepository
	ttl                time.Duration
	serviceToConfigMap map[string]string
	logger             zerolog.Logger
}

func NewRCConfigurationCache(
	store Store,
	repo repository.RCConfigurationRepository,
	ttl time.Duration,
	serviceToConfigMap map[string]string,
	logger zerolog.Logger,
) *RCConfigurationCache {
	if serviceToConfigMap == nil {
		serviceToConfigMap = map[string]string{}
	}
	return &RCConfigurationCache{
		store:              store,
		repo:               repo,
		ttl:                ttl,
		serviceToConfigMap: serviceToConfigMap,
		logger:             logger.With().Str("cache", "rc-configuration").Logger(),
	}
}

// GetOrCacheWithFallback resolves the configuration for a message: the
// explicit configuration id wins, otherwise the sender service's mapped id
// applies. Both lookup keys are supported on purpose.
func (c *RCConfigurationCache) GetOrCacheWithFallback(ctx context.Context, serviceID, configurationID string) (*model.RCConfiguration, error) {
	configID := configurationID
	if configID == "" {
		configID = c.serviceToConfigMap[serviceID]
	}
	if configID == "" {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrInvalidConfigurationID)
	}
	return c.GetOrCacheByID(ctx, configID)
}

// GetOrCacheByID resolves a configuration by its id, preferring the cache.
func (c *RCConfigurationCache) GetOrCacheByID(ctx context.Context, configurationID string) (*model.RCConfiguration, error) {
	return getOrCache(ctx, c.store, rcConfigurationKeyPrefix+configurationID, c.ttl, func(ctx context.Context) (*model.RCConfiguration, error) {
		configuration, err := c.repo.FindLastVersionByConfigurationID(ctx, configurationID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &NotFoundError{Kind: "rc-configuration", Key: configurationID}
			}
			return nil, fmt.Errorf("resolving rc configuration %s: %w", configurationID, err)
		}
		return configuration, nil
	}, c.logger)
}
