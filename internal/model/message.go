package model

import "time"

// Message is a message document as stored, without its content. Messages are
// immutable once created; pending ones are not yet visible to the citizen.
type Message struct {
	ID               string    `json:"id"`
	FiscalCode       string    `json:"fiscalCode"`
	SenderServiceID  string    `json:"senderServiceId"`
	SenderUserID     string    `json:"senderUserId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	TimeToLiveSec    int       `json:"timeToLiveSeconds,omitempty"`
	IsPending        bool      `json:"isPending"`
	FeatureLevelType string    `json:"featureLevelType,omitempty"`
}
