package model

import "time"

// MessageContent is the message body kept in blob storage, one object per
// message id. At most one of the discriminated payloads is set; the producer
// guarantees it and the classifier copes when none matches.
type MessageContent struct {
	Subject        string          `json:"subject"`
	Markdown       string          `json:"markdown"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	PaymentData    *PaymentData    `json:"payment_data,omitempty"`
	EUCovidCert    *EUCovidCert    `json:"eu_covid_cert,omitempty"`
	LegalData      *LegalData      `json:"legal_data,omitempty"`
	ThirdPartyData *ThirdPartyData `json:"third_party_data,omitempty"`
}

// PaymentData describes a pagoPA payment attached to a message.
type PaymentData struct {
	Amount              int64  `json:"amount"`
	NoticeNumber        string `json:"notice_number"`
	InvalidAfterDueDate bool   `json:"invalid_after_due_date,omitempty"`
	Payee               *Payee `json:"payee,omitempty"`
}

// Payee identifies the organization receiving a payment. When absent, the
// sender service's organization fiscal code applies.
type Payee struct {
	FiscalCode string `json:"fiscal_code"`
}

// EUCovidCert carries the claim to retrieve an EU digital covid certificate.
type EUCovidCert struct {
	AuthCode string `json:"auth_code"`
}

// LegalData marks a message with legal value.
type LegalData struct {
	SenderMailFrom     string `json:"sender_mail_from"`
	HasAttachment      bool   `json:"has_attachment"`
	MessageUniqueID    string `json:"message_unique_id"`
	OriginalMessageURL string `json:"original_message_url,omitempty"`
	PECServerServiceID string `json:"pec_server_service_id,omitempty"`
}

// ThirdPartyData references content to be fetched from an external provider
// before rendering.
type ThirdPartyData struct {
	ID                  string     `json:"id"`
	OriginalSender      string     `json:"original_sender,omitempty"`
	OriginalReceiptDate *time.Time `json:"original_receipt_date,omitempty"`
	Summary             string     `json:"summary,omitempty"`
	HasAttachments      bool       `json:"has_attachments,omitempty"`
	HasRemoteContent    bool       `json:"has_remote_content,omitempty"`
	HasPrecondition     string     `json:"has_precondition,omitempty"`
	ConfigurationID     string     `json:"configuration_id,omitempty"`
}
