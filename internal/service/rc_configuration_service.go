package service

import (
	"context"
	"errors"
	"fmt"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/cache"
	"messagesapp/internal/model"

	"github.com/rs/zerolog"
)

// ErrConfigurationNotFound reports an unknown remote-content configuration.
var ErrConfigurationNotFound = errors.New("remote content configuration not found")

// RCConfigurationService serves remote-content configurations.
type RCConfigurationService interface {
	GetConfiguration(ctx context.Context, configurationID string) (*dto.RCConfigurationResponse, error)
}

type rcConfigurationService struct {
	configs *cache.RCConfigurationCache
	logger  zerolog.Logger
}

// NewRCConfigurationService builds the configuration lookup service.
func NewRCConfigurationService(configs *cache.RCConfigurationCache, logger zerolog.Logger) RCConfigurationService {
	return &rcConfigurationService{
		configs: configs,
		logger:  logger.With().Str("service", "rc_configuration").Logger(),
	}
}

func (s *rcConfigurationService) GetConfiguration(ctx context.Context, configurationID string) (*dto.RCConfigurationResponse, error) {
	configuration, err := s.configs.GetOrCacheByID(ctx, configurationID)
	if err != nil {
		var notFound *cache.NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("retrieving remote content configuration: %w", err)
	}

	return &dto.RCConfigurationResponse{
		ConfigurationID: configuration.ConfigurationID,
		Name:            configuration.Name,
		Description:     configuration.Description,
		HasPrecondition: configuration.HasPrecondition,
		ProdEnvironment: toEnvironmentDTO(configuration.ProdEnvironment),
		TestEnvironment: toEnvironmentDTO(configuration.TestEnvironment),
	}, nil
}

func toEnvironmentDTO(env *model.RCEnvironment) *dto.RCConfigurationEnvironment {
	if env == nil {
		return nil
	}
	return &dto.RCConfigurationEnvironment{
		BaseURL:   env.BaseURL,
		TestUsers: env.TestUsers,
	}
}
