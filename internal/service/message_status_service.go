package service

import (
	"context"
	"errors"
	"fmt"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/model"
	"messagesapp/internal/repository"

	"github.com/rs/zerolog"
)

// ErrInvalidStatusChange reports a status change whose body does not carry
// the fields its change type requires.
var ErrInvalidStatusChange = errors.New("invalid message status change")

// MessageStatusService appends read/archived status changes.
type MessageStatusService interface {
	// ApplyChange validates the change against the message, folds it onto
	// the latest status version and appends the result as a new version.
	ApplyChange(ctx context.Context, fiscalCode, messageID string, change dto.MessageStatusChange) (*dto.MessageStatusResponse, error)
}

type messageStatusService struct {
	messageRepo repository.MessageRepository
	statusRepo  repository.MessageStatusRepository
	logger      zerolog.Logger
}

// NewMessageStatusService builds the status upsert service.
func NewMessageStatusService(
	messageRepo repository.MessageRepository,
	statusRepo repository.MessageStatusRepository,
	logger zerolog.Logger,
) MessageStatusService {
	return &messageStatusService{
		messageRepo: messageRepo,
		statusRepo:  statusRepo,
		logger:      logger.With().Str("service", "message_status").Logger(),
	}
}

func (s *messageStatusService) ApplyChange(ctx context.Context, fiscalCode, messageID string, change dto.MessageStatusChange) (*dto.MessageStatusResponse, error) {
	// Ownership check: the change must target a message actually addressed
	// to the caller.
	if _, err := s.messageRepo.FindMessageForRecipient(ctx, fiscalCode, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("retrieving message: %w", err)
	}

	last, err := s.statusRepo.FindLastVersionByMessageID(ctx, messageID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("resolving message status: %w", err)
		}
		// No status yet: fold the change onto a synthetic processed,
		// unread, unarchived base.
		last = &model.MessageStatus{
			MessageID: messageID,
			Status:    model.MessageStatusValueProcessed,
		}
	}

	next, err := applyStatusChange(*last, change)
	if err != nil {
		return nil, err
	}
	next.FiscalCode = fiscalCode

	stored, err := s.statusRepo.Upsert(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("upserting message status: %w", err)
	}

	return &dto.MessageStatusResponse{
		Status:    stored.Status,
		Version:   stored.Version,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// applyStatusChange folds one change onto the latest status. Each change
// type requires its own fields: reading needs is_read, archiving needs
// is_archived, bulk needs both.
func applyStatusChange(last model.MessageStatus, change dto.MessageStatusChange) (model.MessageStatus, error) {
	next := last
	switch change.ChangeType {
	case dto.ChangeTypeReading:
		if change.IsRead == nil {
			return model.MessageStatus{}, fmt.Errorf("%w: reading change without is_read", ErrInvalidStatusChange)
		}
		next.IsRead = *change.IsRead
	case dto.ChangeTypeArchiving:
		if change.IsArchived == nil {
			return model.MessageStatus{}, fmt.Errorf("%w: archiving change without is_archived", ErrInvalidStatusChange)
		}
		next.IsArchived = *change.IsArchived
	case dto.ChangeTypeBulk:
		if change.IsRead == nil || change.IsArchived == nil {
			return model.MessageStatus{}, fmt.Errorf("%w: bulk change without is_read and is_archived", ErrInvalidStatusChange)
		}
		next.IsRead = *change.IsRead
		next.IsArchived = *change.IsArchived
	default:
		return model.MessageStatus{}, fmt.Errorf("%w: unknown change type %q", ErrInvalidStatusChange, change.ChangeType)
	}
	return next, nil
}
