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

type ServiceRepository interface {
	// FindLastVersionByServiceID resolves the latest registry entry for a
	// sending service.
	FindLastVersionByServiceID(ctx context.Context, serviceID string) (*model.Service, error)
}

type serviceRepo struct {
	pool *pgxpool.Pool
}

func NewServiceRepo(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepo{pool: pool}
}

func (r *serviceRepo) FindLastVersionByServiceID(ctx context.Context, serviceID string) (*model.Service, error) {
	query := `
		SELECT doc FROM services
		WHERE service_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	var doc []byte
	err := r.pool.QueryRow(ctx, query, serviceID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying service: %w", err)
	}
	var service model.Service
	if err := json.Unmarshal(doc, &service); err != nil {
		return nil, fmt.Errorf("decoding service document: %w", err)
	}
	return &service, nil
}
