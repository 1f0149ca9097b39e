package dto

import (
	"time"

	"messagesapp/internal/model"
)

// EnrichedMessage is one item of a message listing. Status, title, category
// and the optional flags are only present when enrichment was requested.
type EnrichedMessage struct {
	ID               string           `json:"id"`
	FiscalCode       string           `json:"fiscal_code"`
	CreatedAt        time.Time        `json:"created_at"`
	SenderServiceID  string           `json:"sender_service_id"`
	TimeToLive       int              `json:"time_to_live,omitempty"`
	MessageTitle     string           `json:"message_title,omitempty"`
	IsRead           bool             `json:"is_read"`
	IsArchived       bool             `json:"is_archived"`
	OrganizationName string           `json:"organization_name,omitempty"`
	ServiceName      string           `json:"service_name,omitempty"`
	Category         *MessageCategory `json:"category,omitempty"`
	HasAttachments   bool             `json:"has_attachments,omitempty"`
	HasPrecondition  *bool            `json:"has_precondition,omitempty"`
}

// MessageCategory is the classification tag plus its per-tag extras. For
// PAYMENT, rpt_id is set by the fallback pipeline and notice_number by the
// view pipeline; both stay on the wire until the two sources converge.
type MessageCategory struct {
	Tag                 string     `json:"tag"`
	RptID               string     `json:"rpt_id,omitempty"`
	NoticeNumber        string     `json:"notice_number,omitempty"`
	ID                  string     `json:"id,omitempty"`
	Summary             string     `json:"summary,omitempty"`
	OriginalSender      string     `json:"original_sender,omitempty"`
	OriginalReceiptDate *time.Time `json:"original_receipt_date,omitempty"`
	HasAttachments      bool       `json:"has_attachments,omitempty"`
}

// PaginatedMessages is the listing envelope: one page of items plus the id
// cursors for the adjacent pages.
type PaginatedMessages struct {
	Items []EnrichedMessage `json:"items"`
	Prev  string            `json:"prev,omitempty"`
	Next  string            `json:"next,omitempty"`
}

// ListMessagesQuery carries the validated listing parameters.
type ListMessagesQuery struct {
	PageSize            int    `validate:"min=1,max=100"`
	MaximumID           string `validate:"omitempty,min=1"`
	MinimumID           string `validate:"omitempty,min=1"`
	EnrichResultData    bool
	GetArchivedMessages bool
}

// MessageResponse wraps a single retrieved message.
type MessageResponse struct {
	Message MessageDetail `json:"message"`
}

// MessageDetail is the single-message payload: the public projection, its
// content when available, and the public status/service data when requested.
type MessageDetail struct {
	ID               string                `json:"id"`
	FiscalCode       string                `json:"fiscal_code"`
	CreatedAt        time.Time             `json:"created_at"`
	SenderServiceID  string                `json:"sender_service_id"`
	TimeToLive       int                   `json:"time_to_live,omitempty"`
	Content          *model.MessageContent `json:"content,omitempty"`
	OrganizationName string                `json:"organization_name,omitempty"`
	ServiceName      string                `json:"service_name,omitempty"`
	MessageTitle     string                `json:"message_title,omitempty"`
	IsRead           *bool                 `json:"is_read,omitempty"`
	IsArchived       *bool                 `json:"is_archived,omitempty"`
	Category         *MessageCategory      `json:"category,omitempty"`
}
