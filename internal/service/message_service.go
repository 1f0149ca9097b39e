package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/blob"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/model"
	"messagesapp/internal/repository"

	"github.com/rs/zerolog"
)

// MessageService retrieves single messages with their content.
type MessageService interface {
	// GetMessage returns one message addressed to the given recipient. With
	// withPublicData it also resolves the read/archived state, the sender
	// display data and the category.
	GetMessage(ctx context.Context, fiscalCode, messageID string, withPublicData bool) (*dto.MessageResponse, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	statusRepo  repository.MessageStatusRepository
	content     blob.ContentStore
	services    *cache.ServiceCache
	fetcher     category.Fetcher
	logger      zerolog.Logger
}

// NewMessageService builds the single-message retrieval service.
func NewMessageService(
	messageRepo repository.MessageRepository,
	statusRepo repository.MessageStatusRepository,
	contentStore blob.ContentStore,
	serviceCache *cache.ServiceCache,
	fetcher category.Fetcher,
	logger zerolog.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		statusRepo:  statusRepo,
		content:     contentStore,
		services:    serviceCache,
		fetcher:     fetcher,
		logger:      logger.With().Str("service", "message").Logger(),
	}
}

func (s *messageService) GetMessage(ctx context.Context, fiscalCode, messageID string, withPublicData bool) (*dto.MessageResponse, error) {
	var (
		wg         sync.WaitGroup
		message    *model.Message
		messageErr error
		content    *model.MessageContent
		contentErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		message, messageErr = s.messageRepo.FindMessageForRecipient(ctx, fiscalCode, messageID)
	}()
	go func() {
		defer wg.Done()
		content, contentErr = s.content.GetMessageContent(ctx, messageID)
	}()
	wg.Wait()

	if messageErr != nil {
		if errors.Is(messageErr, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("retrieving message: %w", messageErr)
	}
	// A pending message is not yet visible to the citizen, on this endpoint
	// as much as on the listing.
	if message.IsPending {
		return nil, ErrMessageNotFound
	}
	// A message without a stored body is still retrievable; only a real
	// store failure aborts the request.
	if contentErr != nil && !errors.Is(contentErr, blob.ErrContentNotFound) {
		return nil, fmt.Errorf("retrieving message content: %w", contentErr)
	}

	if content != nil && content.PaymentData != nil && content.PaymentData.Payee == nil {
		service, err := s.services.GetOrCache(ctx, message.SenderServiceID)
		if err != nil {
			return nil, fmt.Errorf("resolving payee: %w", err)
		}
		content.PaymentData.Payee = &model.Payee{FiscalCode: service.OrganizationFiscalCode}
	}

	detail := dto.MessageDetail{
		ID:              message.ID,
		FiscalCode:      message.FiscalCode,
		CreatedAt:       message.CreatedAt,
		SenderServiceID: message.SenderServiceID,
		TimeToLive:      message.TimeToLiveSec,
		Content:         content,
	}

	if withPublicData {
		if err := s.attachPublicData(ctx, *message, content, &detail); err != nil {
			return nil, err
		}
	}

	return &dto.MessageResponse{Message: detail}, nil
}

// attachPublicData resolves status and sender service concurrently and
// completes the detail with the listing-level display fields.
func (s *messageService) attachPublicData(ctx context.Context, message model.Message, content *model.MessageContent, detail *dto.MessageDetail) error {
	var (
		wg         sync.WaitGroup
		status     *model.MessageStatus
		statusErr  error
		service    *model.Service
		serviceErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		status, statusErr = s.statusRepo.FindLastVersionByMessageID(ctx, message.ID)
	}()
	go func() {
		defer wg.Done()
		service, serviceErr = s.services.GetOrCache(ctx, message.SenderServiceID)
	}()
	wg.Wait()

	if statusErr != nil {
		return fmt.Errorf("resolving message status: %w", statusErr)
	}
	if serviceErr != nil {
		return fmt.Errorf("resolving sender service: %w", serviceErr)
	}

	detail.IsRead = &status.IsRead
	detail.IsArchived = &status.IsArchived
	detail.OrganizationName = service.OrganizationName
	detail.ServiceName = service.ServiceName
	if content != nil {
		detail.MessageTitle = content.Subject
		detail.Category = toCategoryDTO(category.Classify(ctx, message, *service, *content, s.fetcher))
	}
	return nil
}
