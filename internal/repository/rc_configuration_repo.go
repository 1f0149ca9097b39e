package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"messagesapp/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RCConfigurationRepository interface {
	// FindLastVersionByConfigurationID resolves the latest remote-content
	// configuration for the given configuration id.
	FindLastVersionByConfigurationID(ctx context.Context, configurationID string) (*model.RCConfiguration, error)
}

type rcConfigurationRepo struct {
	pool *pgxpool.Pool
}

func NewRCConfigurationRepo(pool *pgxpool.Pool) RCConfigurationRepository {
	return &rcConfigurationRepo{pool: pool}
}

func (r *rcConfigurationRepo) FindLastVersionByConfigurationID(ctx context.Context, configurationID string) (*model.RCConfiguration, error) {
	query := `
		SELECT doc FROM rc_configurations
		WHERE configuration_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, configurationID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rc configuration %s: %w", configurationID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying rc configuration: %w", err)
	}
	var configuration model.RCConfiguration
	if err := json.Unmarshal(doc, &configuration); err != nil {
		return nil, fmt.Errorf("decoding rc configuration document: %w", err)
	}
	return &configuration, nil
}
