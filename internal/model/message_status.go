package model

import "time"

// MessageStatusValueProcessed is the only processing status this service
// emits: a message without a stored status is synthesized as processed.
const MessageStatusValueProcessed = "PROCESSED"

// MessageStatus is one version of a message's read/archived state. The store
// is append-only: the record with the highest version is authoritative,
// older versions are history.
type MessageStatus struct {
	MessageID  string    `json:"messageId"`
	FiscalCode string    `json:"fiscalCode"`
	Status     string    `json:"status"`
	IsRead     bool      `json:"isRead"`
	IsArchived bool      `json:"isArchived"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Version    int       `json:"version"`
}
