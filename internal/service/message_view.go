package service

import (
	"context"
	"fmt"
	"sync"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/model"
	"messagesapp/internal/paging"
	"messagesapp/internal/repository"

	"github.com/rs/zerolog"
)

// viewSource lists messages from the precomputed message view. All display
// data is already denormalized in the view document, so the only remote
// lookup left is the remote-content precondition flag.
type viewSource struct {
	viewRepo  repository.MessageViewRepository
	rcConfigs *cache.RCConfigurationCache
	fetcher   category.Fetcher
	logger    zerolog.Logger
}

// NewViewSource builds the listing source backed by the message view.
func NewViewSource(
	viewRepo repository.MessageViewRepository,
	rcConfigCache *cache.RCConfigurationCache,
	fetcher category.Fetcher,
	logger zerolog.Logger,
) MessageSource {
	return &viewSource{
		viewRepo:  viewRepo,
		rcConfigs: rcConfigCache,
		fetcher:   fetcher,
		logger:    logger.With().Str("service", "message_view").Logger(),
	}
}

func (s *viewSource) List(ctx context.Context, params ListMessagesParams) (*dto.PaginatedMessages, error) {
	cursor, err := s.viewRepo.QueryPage(ctx, params.FiscalCode, params.GetArchivedMessages, params.MaximumID, params.MinimumID, params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("querying message view: %w", err)
	}

	// Undecodable view documents are dropped; the view is a projection, a
	// bad row never fails the page.
	decoded := paging.MapBatches(cursor, func(_ context.Context, batch []paging.Item[model.MessageView]) []paging.Item[model.MessageView] {
		out := batch[:0:0]
		for _, item := range batch {
			if item.Err == nil {
				out = append(out, item)
			}
		}
		return out
	})

	page, err := paging.ToPage(ctx, decoded, params.PageSize)
	if err != nil {
		return nil, fmt.Errorf("paging message view: %w", err)
	}

	views := paging.Values(page.Results)
	items := make([]dto.EnrichedMessage, len(views))
	for i, view := range views {
		items[i] = s.toEnrichedMessage(ctx, view, params.EnrichResultData)
	}
	if params.EnrichResultData {
		s.applyPreconditions(ctx, views, items)
	}

	results := paging.ToPageResults(items, page.HasMoreResults, func(m dto.EnrichedMessage) string { return m.ID })
	return &dto.PaginatedMessages{Items: results.Items, Prev: results.Prev, Next: results.Next}, nil
}

func (s *viewSource) toEnrichedMessage(ctx context.Context, view model.MessageView, enrich bool) dto.EnrichedMessage {
	enriched := dto.EnrichedMessage{
		ID:              view.ID,
		FiscalCode:      view.FiscalCode,
		CreatedAt:       view.CreatedAt,
		SenderServiceID: view.SenderServiceID,
		TimeToLive:      view.TimeToLiveSec,
	}
	if !enrich {
		return enriched
	}
	enriched.IsRead = view.Status.Read
	enriched.IsArchived = view.Status.Archived
	enriched.MessageTitle = view.MessageTitle
	enriched.Category = toCategoryDTO(category.FromViewComponents(ctx, view, s.fetcher))
	enriched.HasAttachments = view.Components.Attachments.Has
	return enriched
}

// applyPreconditions resolves the remote-content precondition flag for
// every third-party message on the page. Configurations are fetched once
// per sender service, concurrently; a failed lookup leaves the flag unset
// rather than failing the page.
func (s *viewSource) applyPreconditions(ctx context.Context, views []model.MessageView, items []dto.EnrichedMessage) {
	configurationIDs := make(map[string]string)
	for _, view := range views {
		if !view.Components.ThirdParty.Has {
			continue
		}
		if _, seen := configurationIDs[view.SenderServiceID]; !seen {
			configurationIDs[view.SenderServiceID] = view.Components.ThirdParty.ConfigurationID
		}
	}
	if len(configurationIDs) == 0 {
		return
	}

	var (
		mu             sync.Mutex
		wg             sync.WaitGroup
		configurations = make(map[string]*model.RCConfiguration, len(configurationIDs))
	)
	for serviceID, configurationID := range configurationIDs {
		wg.Add(1)
		go func(serviceID, configurationID string) {
			defer wg.Done()
			configuration, err := s.rcConfigs.GetOrCacheWithFallback(ctx, serviceID, configurationID)
			if err != nil {
				s.logger.Error().Err(err).Str("service_id", serviceID).Msg("Cannot resolve remote content configuration")
				return
			}
			mu.Lock()
			configurations[serviceID] = configuration
			mu.Unlock()
		}(serviceID, configurationID)
	}
	wg.Wait()

	for i, view := range views {
		if !view.Components.ThirdParty.Has {
			continue
		}
		configuration, ok := configurations[view.SenderServiceID]
		if !ok {
			continue
		}
		hasPrecondition := rcConfigHasPrecondition(configuration, view.Status.Read)
		items[i].HasPrecondition = &hasPrecondition
	}
}
