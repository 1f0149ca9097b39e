package dto

import "time"

// Status change types.
const (
	ChangeTypeReading   = "reading"
	ChangeTypeArchiving = "archiving"
	ChangeTypeBulk      = "bulk"
)

// MessageStatusChange is the body of a status upsert: reading touches only
// is_read, archiving only is_archived, bulk both.
type MessageStatusChange struct {
	ChangeType string `json:"change_type" validate:"required,oneof=reading archiving bulk"`
	IsRead     *bool  `json:"is_read,omitempty"`
	IsArchived *bool  `json:"is_archived,omitempty"`
}

// MessageStatusResponse reports the freshly appended status version.
type MessageStatusResponse struct {
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
