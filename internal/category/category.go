// Package category classifies a message into exactly one semantic category.
// The decision table is ordered; the first matching rule wins.
package category

import (
	"context"
	"time"

	"messagesapp/internal/model"
)

// Category tags, in priority order.
const (
	TagEUCovidCert  = "EU_COVID_CERT"
	TagLegalMessage = "LEGAL_MESSAGE"
	TagPN           = "PN"
	TagPayment      = "PAYMENT"
	TagGeneric      = "GENERIC"
)

// Category is the classification result. For PAYMENT, RptID is the payee (or
// sender organization) fiscal code concatenated with the notice number; the
// view pipeline cannot compute it and carries NoticeNumber alone instead —
// the two fields deliberately coexist.
type Category struct {
	Tag          string
	RptID        string
	NoticeNumber string

	// Third-party metadata, surfaced inline when the sender is a
	// registered remote-content provider. The view component carries no
	// receipt date, so only the fallback pipeline sets it.
	ID                  string
	Summary             string
	OriginalSender      string
	OriginalReceiptDate *time.Time
	HasAttachments      bool
}

// Fetcher recognizes third-party integrations (e.g. PN) by sender service
// id. Implementations must degrade to TagGeneric on failure, never error.
type Fetcher interface {
	Fetch(ctx context.Context, serviceID string) string
}

// Classify maps a message, its resolved sender service and its content to a
// category. Content payload checks come first; the third-party rule consults
// the fetcher with the sender service id.
func Classify(ctx context.Context, message model.Message, service model.Service, content model.MessageContent, fetcher Fetcher) Category {
	switch {
	case content.EUCovidCert != nil:
		return Category{Tag: TagEUCovidCert}
	case content.LegalData != nil:
		return Category{Tag: TagLegalMessage}
	case content.ThirdPartyData != nil:
		if tag := fetcher.Fetch(ctx, message.SenderServiceID); tag != TagGeneric {
			return Category{
				Tag:                 tag,
				ID:                  content.ThirdPartyData.ID,
				Summary:             content.ThirdPartyData.Summary,
				OriginalSender:      content.ThirdPartyData.OriginalSender,
				OriginalReceiptDate: content.ThirdPartyData.OriginalReceiptDate,
				HasAttachments:      content.ThirdPartyData.HasAttachments,
			}
		}
		return Category{Tag: TagGeneric}
	case content.PaymentData != nil:
		payeeFiscalCode := service.OrganizationFiscalCode
		if content.PaymentData.Payee != nil && content.PaymentData.Payee.FiscalCode != "" {
			payeeFiscalCode = content.PaymentData.Payee.FiscalCode
		}
		return Category{
			Tag:          TagPayment,
			RptID:        payeeFiscalCode + content.PaymentData.NoticeNumber,
			NoticeNumber: content.PaymentData.NoticeNumber,
		}
	default:
		return Category{Tag: TagGeneric}
	}
}

// FromViewComponents classifies a message-view row from its denormalized
// component flags, no content fetch involved. Payment rows carry the bare
// notice number only: the view does not project the organization fiscal
// code needed for a full rptId.
func FromViewComponents(ctx context.Context, view model.MessageView, fetcher Fetcher) Category {
	components := view.Components
	switch {
	case components.EUCovidCert.Has:
		return Category{Tag: TagEUCovidCert}
	case components.LegalData.Has:
		return Category{Tag: TagLegalMessage}
	case components.ThirdParty.Has:
		if tag := fetcher.Fetch(ctx, view.SenderServiceID); tag != TagGeneric {
			return Category{
				Tag:            tag,
				ID:             components.ThirdParty.ID,
				Summary:        components.ThirdParty.Summary,
				OriginalSender: components.ThirdParty.OriginalSender,
				HasAttachments: components.ThirdParty.HasAttachments,
			}
		}
		return Category{Tag: TagGeneric}
	case components.Payment.Has:
		return Category{
			Tag:          TagPayment,
			NoticeNumber: components.Payment.NoticeNumber,
		}
	default:
		return Category{Tag: TagGeneric}
	}
}
