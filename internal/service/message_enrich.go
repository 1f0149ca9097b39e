package service

import (
	"context"
	"fmt"
	"sync"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/blob"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/model"
	"messagesapp/internal/paging"
	"messagesapp/internal/tracking"

	"github.com/rs/zerolog"
)

// messageWithStatus is a message tagged with its authoritative read/archived
// state, the intermediate shape between the status join and the content
// enrichment.
type messageWithStatus struct {
	message    model.Message
	isRead     bool
	isArchived bool
}

// toPublicMessage projects a stored message into its listing item without
// any enrichment.
func toPublicMessage(message model.Message) dto.EnrichedMessage {
	return dto.EnrichedMessage{
		ID:              message.ID,
		FiscalCode:      message.FiscalCode,
		CreatedAt:       message.CreatedAt,
		SenderServiceID: message.SenderServiceID,
		TimeToLive:      message.TimeToLiveSec,
	}
}

func toCategoryDTO(c category.Category) *dto.MessageCategory {
	return &dto.MessageCategory{
		Tag:                 c.Tag,
		RptID:               c.RptID,
		NoticeNumber:        c.NoticeNumber,
		ID:                  c.ID,
		Summary:             c.Summary,
		OriginalSender:      c.OriginalSender,
		OriginalReceiptDate: c.OriginalReceiptDate,
		HasAttachments:      c.HasAttachments,
	}
}

// rcConfigHasPrecondition folds the configuration tri-state onto one
// message: ALWAYS holds unconditionally, ONCE only while the message is
// still unread.
func rcConfigHasPrecondition(configuration *model.RCConfiguration, isRead bool) bool {
	switch configuration.HasPrecondition {
	case model.HasPreconditionAlways:
		return true
	case model.HasPreconditionOnce:
		return !isRead
	default:
		return false
	}
}

// enricher bundles the collaborators shared by the status join and the
// content enrichment of the fallback pipeline.
type enricher struct {
	statusRepo statusJoiner
	content    blob.ContentStore
	services   *cache.ServiceCache
	rcConfigs  *cache.RCConfigurationCache
	fetcher    category.Fetcher
	tracker    tracking.Tracker
	logger     zerolog.Logger
}

// statusJoiner is the slice of the status repository the enricher needs.
type statusJoiner interface {
	FindLastVersionsByMessageIDIn(ctx context.Context, messageIDs []string) (map[string]model.MessageStatus, error)
}

func (e *enricher) trackFailure(ctx context.Context, err error, kind, fiscalCode, messageID, serviceID string) error {
	e.logger.Error().Err(err).Str("message_id", messageID).Str("fiscal_code", fiscalCode).Msg("Cannot enrich message")
	e.tracker.TrackEnrichmentFailure(ctx, kind, fiscalCode, messageID, serviceID)
	return err
}

// joinStatuses resolves the authoritative status of each message in the
// batch with one store round trip. A message with no status record becomes
// a failed item; failed items stay in the batch so the page-level policy
// can see them.
func (e *enricher) joinStatuses(ctx context.Context, messages []model.Message) []paging.Item[messageWithStatus] {
	ids := make([]string, len(messages))
	for i, message := range messages {
		ids[i] = message.ID
	}

	statuses, err := e.statusRepo.FindLastVersionsByMessageIDIn(ctx, ids)
	out := make([]paging.Item[messageWithStatus], len(messages))
	for i, message := range messages {
		if err != nil {
			out[i] = paging.Fail[messageWithStatus](e.trackFailure(
				ctx, fmt.Errorf("resolving message statuses: %w", err),
				tracking.KindStatus, message.FiscalCode, message.ID, message.SenderServiceID,
			))
			continue
		}
		status, ok := statuses[message.ID]
		if !ok {
			out[i] = paging.Fail[messageWithStatus](e.trackFailure(
				ctx, fmt.Errorf("empty message status, message %s", message.ID),
				tracking.KindStatus, message.FiscalCode, message.ID, message.SenderServiceID,
			))
			continue
		}
		out[i] = paging.Ok(messageWithStatus{
			message:    message,
			isRead:     status.IsRead,
			isArchived: status.IsArchived,
		})
	}
	return out
}

// filterByArchived keeps the items matching the requested archived state.
// Failed items are never filtered out: they must reach the page assembly to
// poison it.
func filterByArchived(items []paging.Item[messageWithStatus], archived bool) []paging.Item[messageWithStatus] {
	out := items[:0:0]
	for _, item := range items {
		if item.Err != nil || item.Value.isArchived == archived {
			out = append(out, item)
		}
	}
	return out
}

// enrichContentData completes each surviving item with its body, sender
// service display data and category. Content and service resolution run
// concurrently per item; results are written back by index so the batch
// order never changes. A failure marks that single item without aborting
// the batch.
func (e *enricher) enrichContentData(ctx context.Context, items []paging.Item[messageWithStatus]) []paging.Item[dto.EnrichedMessage] {
	out := make([]paging.Item[dto.EnrichedMessage], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		if item.Err != nil {
			out[i] = paging.Fail[dto.EnrichedMessage](item.Err)
			continue
		}
		wg.Add(1)
		go func(i int, ms messageWithStatus) {
			defer wg.Done()
			out[i] = e.enrichOne(ctx, ms)
		}(i, item.Value)
	}
	wg.Wait()
	return out
}

func (e *enricher) enrichOne(ctx context.Context, ms messageWithStatus) paging.Item[dto.EnrichedMessage] {
	message := ms.message

	var (
		inner      sync.WaitGroup
		content    *model.MessageContent
		contentErr error
		service    *model.Service
		serviceErr error
	)
	inner.Add(2)
	go func() {
		defer inner.Done()
		content, contentErr = e.content.GetMessageContent(ctx, message.ID)
	}()
	go func() {
		defer inner.Done()
		service, serviceErr = e.services.GetOrCache(ctx, message.SenderServiceID)
	}()
	inner.Wait()

	if contentErr != nil {
		return paging.Fail[dto.EnrichedMessage](e.trackFailure(
			ctx, contentErr, tracking.KindContent, message.FiscalCode, message.ID, "",
		))
	}
	if serviceErr != nil {
		return paging.Fail[dto.EnrichedMessage](e.trackFailure(
			ctx, serviceErr, tracking.KindService, message.FiscalCode, message.ID, message.SenderServiceID,
		))
	}

	enriched := toPublicMessage(message)
	enriched.IsRead = ms.isRead
	enriched.IsArchived = ms.isArchived
	enriched.MessageTitle = content.Subject
	enriched.OrganizationName = service.OrganizationName
	enriched.ServiceName = service.ServiceName
	enriched.Category = toCategoryDTO(category.Classify(ctx, message, *service, *content, e.fetcher))

	if content.ThirdPartyData != nil {
		enriched.HasAttachments = content.ThirdPartyData.HasAttachments
		configuration, err := e.rcConfigs.GetOrCacheWithFallback(ctx, message.SenderServiceID, content.ThirdPartyData.ConfigurationID)
		if err != nil {
			return paging.Fail[dto.EnrichedMessage](e.trackFailure(
				ctx, err, tracking.KindService, message.FiscalCode, message.ID, message.SenderServiceID,
			))
		}
		hasPrecondition := rcConfigHasPrecondition(configuration, ms.isRead)
		enriched.HasPrecondition = &hasPrecondition
	}

	return paging.Ok(enriched)
}
