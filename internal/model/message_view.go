package model

import "time"

// MessageView is one row of the denormalized projection joining a message
// with its latest status and component-presence flags. Maintained by an
// external materialization process; this backend only queries it.
type MessageView struct {
	ID              string         `json:"id"`
	FiscalCode      string         `json:"fiscalCode"`
	SenderServiceID string         `json:"senderServiceId"`
	CreatedAt       time.Time      `json:"createdAt"`
	TimeToLiveSec   int            `json:"timeToLive,omitempty"`
	MessageTitle    string         `json:"messageTitle"`
	Status          ViewStatus     `json:"status"`
	Components      ViewComponents `json:"components"`
	Version         int            `json:"version"`
}

// ViewStatus is the status slice of a view row.
type ViewStatus struct {
	Processing string `json:"processing"`
	Read       bool   `json:"read"`
	Archived   bool   `json:"archived"`
}

// ViewComponents carries the per-category presence flags of a view row.
type ViewComponents struct {
	Attachments ViewComponent           `json:"attachments"`
	EUCovidCert ViewComponent           `json:"euCovidCert"`
	LegalData   ViewComponent           `json:"legalData"`
	Payment     ViewPaymentComponent    `json:"payment"`
	ThirdParty  ViewThirdPartyComponent `json:"thirdParty"`
}

// ViewComponent is a bare presence flag.
type ViewComponent struct {
	Has bool `json:"has"`
}

// ViewPaymentComponent projects the payment payload into the view.
type ViewPaymentComponent struct {
	Has          bool       `json:"has"`
	NoticeNumber string     `json:"notice_number,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// ViewThirdPartyComponent projects the third-party payload into the view.
type ViewThirdPartyComponent struct {
	Has              bool   `json:"has"`
	ID               string `json:"id,omitempty"`
	OriginalSender   string `json:"original_sender,omitempty"`
	Summary          string `json:"summary,omitempty"`
	HasAttachments   bool   `json:"has_attachments,omitempty"`
	HasRemoteContent bool   `json:"has_remote_content,omitempty"`
	ConfigurationID  string `json:"configuration_id,omitempty"`
}
