package service

import (
	"context"
	"fmt"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/blob"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/model"
	"messagesapp/internal/paging"
	"messagesapp/internal/repository"
	"messagesapp/internal/tracking"

	"github.com/rs/zerolog"
)

// fallbackSource lists messages straight from the message store, joining
// statuses and fetching content on the fly. It is the source of record and
// the one every request falls back to while the view rollout is gated.
type fallbackSource struct {
	messageRepo repository.MessageRepository
	enricher    *enricher
	logger      zerolog.Logger
}

// NewFallbackSource builds the listing source backed by the message store.
func NewFallbackSource(
	messageRepo repository.MessageRepository,
	statusRepo repository.MessageStatusRepository,
	contentStore blob.ContentStore,
	serviceCache *cache.ServiceCache,
	rcConfigCache *cache.RCConfigurationCache,
	fetcher category.Fetcher,
	tracker tracking.Tracker,
	logger zerolog.Logger,
) MessageSource {
	sublogger := logger.With().Str("service", "message_fallback").Logger()
	return &fallbackSource{
		messageRepo: messageRepo,
		enricher: &enricher{
			statusRepo: statusRepo,
			content:    contentStore,
			services:   serviceCache,
			rcConfigs:  rcConfigCache,
			fetcher:    fetcher,
			tracker:    tracker,
			logger:     sublogger,
		},
		logger: sublogger,
	}
}

func (s *fallbackSource) List(ctx context.Context, params ListMessagesParams) (*dto.PaginatedMessages, error) {
	cursor, err := s.messageRepo.FindMessages(ctx, params.FiscalCode, params.PageSize, params.MaximumID, params.MinimumID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}

	enriched := paging.MapBatches(cursor, func(ctx context.Context, batch []paging.Item[model.Message]) []paging.Item[dto.EnrichedMessage] {
		// Undecodable and still-pending documents are dropped before
		// anything else looks at the batch.
		retrieved := make([]model.Message, 0, len(batch))
		for _, item := range batch {
			if item.Err != nil || item.Value.IsPending {
				continue
			}
			retrieved = append(retrieved, item.Value)
		}

		if !params.EnrichResultData {
			out := make([]paging.Item[dto.EnrichedMessage], len(retrieved))
			for i, message := range retrieved {
				out[i] = paging.Ok(toPublicMessage(message))
			}
			return out
		}

		withStatus := s.enricher.joinStatuses(ctx, retrieved)
		withStatus = filterByArchived(withStatus, params.GetArchivedMessages)
		return s.enricher.enrichContentData(ctx, withStatus)
	})

	page, err := paging.ToPage(ctx, enriched, params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("paging messages: %w", err)
	}
	if err := paging.FirstError(page.Results); err != nil {
		s.logger.Error().Err(err).Str("fiscal_code", params.FiscalCode).Msg("Cannot enrich data")
		return nil, ErrCannotEnrich
	}

	items := paging.Values(page.Results)
	results := paging.ToPageResults(items, page.HasMoreResults, func(m dto.EnrichedMessage) string { return m.ID })
	return &dto.PaginatedMessages{Items: results.Items, Prev: results.Prev, Next: results.Next}, nil
}
