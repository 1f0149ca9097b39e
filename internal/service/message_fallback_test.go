package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/cache"
	"messagesapp/internal/category"
	"messagesapp/internal/model"
	"messagesapp/internal/paging"
	"messagesapp/internal/tracking"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

const testFiscalCode = "AAABBB80A01C123D"

func testMessage(id, serviceID string) model.Message {
	return model.Message{
		ID:              id,
		FiscalCode:      testFiscalCode,
		SenderServiceID: serviceID,
		CreatedAt:       time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC),
	}
}

type fallbackFixture struct {
	messageRepo *fakeMessageRepo
	statusRepo  *fakeStatusRepo
	contents    *fakeContentStore
	services    *fakeServiceRepo
	configs     *fakeRCConfigurationRepo
	tracker     *recordingTracker
}

func (f *fallbackFixture) source() MessageSource {
	serviceCache := cache.NewServiceCache(newMemStore(), f.services, time.Minute, zerolog.Nop())
	configCache := cache.NewRCConfigurationCache(newMemStore(), f.configs, time.Minute, nil, zerolog.Nop())
	return NewFallbackSource(
		f.messageRepo, f.statusRepo, f.contents,
		serviceCache, configCache,
		staticFetcher(category.TagGeneric), f.tracker, zerolog.Nop(),
	)
}

func newFallbackFixture() *fallbackFixture {
	return &fallbackFixture{
		messageRepo: &fakeMessageRepo{},
		statusRepo:  &fakeStatusRepo{statuses: map[string]model.MessageStatus{}},
		contents:    &fakeContentStore{contents: map[string]*model.MessageContent{}},
		services: &fakeServiceRepo{services: map[string]model.Service{
			"svc-1": {
				ServiceID:              "svc-1",
				ServiceName:            "Tax Office",
				OrganizationName:       "City of Milan",
				OrganizationFiscalCode: "00000000001",
			},
		}},
		configs: &fakeRCConfigurationRepo{configs: map[string]model.RCConfiguration{}},
		tracker: &recordingTracker{},
	}
}

func TestFallbackListPublic(t *testing.T) {
	f := newFallbackFixture()
	pending := testMessage("03", "svc-1")
	pending.IsPending = true
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Fail[model.Message](errors.New("undecodable document")),
		paging.Ok(pending),
		paging.Ok(testMessage("02", "svc-1")),
		paging.Ok(testMessage("01", "svc-1")),
	}}

	page, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode: testFiscalCode,
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if got := len(page.Items); got != 2 {
		t.Fatalf("got %d items, want 2", got)
	}
	// Undecodable and pending rows are dropped before paging, so the page
	// holds the two retrievable messages only.
	if page.Items[0].ID != "02" || page.Items[1].ID != "01" {
		t.Fatalf("got ids %s, %s; want 02, 01", page.Items[0].ID, page.Items[1].ID)
	}
	if page.Items[0].MessageTitle != "" {
		t.Fatalf("unexpected enrichment on public listing: %+v", page.Items[0])
	}
	if page.Prev != "02" {
		t.Errorf("prev = %q, want 02", page.Prev)
	}
	if page.Next != "" {
		t.Errorf("next = %q, want empty on final page", page.Next)
	}
}

func TestFallbackListPagination(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("03", "svc-1")),
		paging.Ok(testMessage("02", "svc-1")),
		paging.Ok(testMessage("01", "svc-1")),
	}}

	page, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode: testFiscalCode,
		PageSize:   2,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if page.Prev != "03" || page.Next != "02" {
		t.Fatalf("cursors = (%q, %q), want (03, 02)", page.Prev, page.Next)
	}
}

func TestFallbackListEnriched(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("01", "svc-1")),
	}}
	f.statusRepo.statuses["01"] = model.MessageStatus{
		MessageID: "01", Status: model.MessageStatusValueProcessed, IsRead: true,
	}
	f.contents.contents["01"] = &model.MessageContent{
		Subject:  "Your payment is due",
		Markdown: "Pay the notice below.",
		PaymentData: &model.PaymentData{
			Amount:       1000,
			NoticeNumber: "012345678901234567",
		},
	}

	page, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode:       testFiscalCode,
		PageSize:         10,
		EnrichResultData: true,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := dto.EnrichedMessage{
		ID:               "01",
		FiscalCode:       testFiscalCode,
		CreatedAt:        time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC),
		SenderServiceID:  "svc-1",
		MessageTitle:     "Your payment is due",
		IsRead:           true,
		OrganizationName: "City of Milan",
		ServiceName:      "Tax Office",
		Category: &dto.MessageCategory{
			Tag:          category.TagPayment,
			RptID:        "00000000001012345678901234567",
			NoticeNumber: "012345678901234567",
		},
	}
	if diff := cmp.Diff(want, page.Items[0]); diff != "" {
		t.Fatalf("enriched message mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackListThirdPartyPrecondition(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("01", "svc-1")),
	}}
	f.statusRepo.statuses["01"] = model.MessageStatus{MessageID: "01", Status: model.MessageStatusValueProcessed}
	f.contents.contents["01"] = &model.MessageContent{
		Subject: "A document for you",
		ThirdPartyData: &model.ThirdPartyData{
			ID:              "tp-1",
			HasAttachments:  true,
			ConfigurationID: "cfg-1",
		},
	}
	f.configs.configs["cfg-1"] = model.RCConfiguration{
		ConfigurationID: "cfg-1",
		HasPrecondition: model.HasPreconditionAlways,
	}

	page, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode:       testFiscalCode,
		PageSize:         10,
		EnrichResultData: true,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	item := page.Items[0]
	if !item.HasAttachments {
		t.Error("has_attachments not propagated from third-party data")
	}
	if item.HasPrecondition == nil || !*item.HasPrecondition {
		t.Errorf("has_precondition = %v, want true for ALWAYS", item.HasPrecondition)
	}
}

func TestFallbackListArchivedFilter(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("02", "svc-1")),
		paging.Ok(testMessage("01", "svc-1")),
	}}
	f.statusRepo.statuses["02"] = model.MessageStatus{MessageID: "02", Status: model.MessageStatusValueProcessed, IsArchived: true}
	f.statusRepo.statuses["01"] = model.MessageStatus{MessageID: "01", Status: model.MessageStatusValueProcessed}
	f.contents.contents["02"] = &model.MessageContent{Subject: "Archived one"}
	f.contents.contents["01"] = &model.MessageContent{Subject: "Inbox one"}

	page, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode:          testFiscalCode,
		PageSize:            10,
		EnrichResultData:    true,
		GetArchivedMessages: true,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(page.Items) != 1 || page.Items[0].ID != "02" {
		t.Fatalf("got %+v, want only the archived message", page.Items)
	}
	if !page.Items[0].IsArchived {
		t.Error("is_archived not set")
	}
}

func TestFallbackListMissingStatusPoisonsPage(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("02", "svc-1")),
		paging.Ok(testMessage("01", "svc-1")),
	}}
	f.statusRepo.statuses["02"] = model.MessageStatus{MessageID: "02", Status: model.MessageStatusValueProcessed}
	f.contents.contents["02"] = &model.MessageContent{Subject: "Fine"}

	_, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode:       testFiscalCode,
		PageSize:         10,
		EnrichResultData: true,
	})
	if !errors.Is(err, ErrCannotEnrich) {
		t.Fatalf("err = %v, want ErrCannotEnrich", err)
	}

	want := []trackedFailure{{kind: tracking.KindStatus, messageID: "01", serviceID: "svc-1"}}
	if diff := cmp.Diff(want, f.tracker.failures, cmp.AllowUnexported(trackedFailure{})); diff != "" {
		t.Fatalf("tracked failures mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackListContentFailurePoisonsPage(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.batches = [][]paging.Item[model.Message]{{
		paging.Ok(testMessage("01", "svc-1")),
	}}
	f.statusRepo.statuses["01"] = model.MessageStatus{MessageID: "01", Status: model.MessageStatusValueProcessed}
	f.contents.errs = map[string]error{"01": errors.New("blob store unavailable")}

	_, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode:       testFiscalCode,
		PageSize:         10,
		EnrichResultData: true,
	})
	if !errors.Is(err, ErrCannotEnrich) {
		t.Fatalf("err = %v, want ErrCannotEnrich", err)
	}
	if len(f.tracker.failures) != 1 || f.tracker.failures[0].kind != tracking.KindContent {
		t.Fatalf("tracked failures = %+v, want one content failure", f.tracker.failures)
	}
}

func TestFallbackListQueryError(t *testing.T) {
	f := newFallbackFixture()
	f.messageRepo.queryErr = errors.New("connection refused")

	_, err := f.source().List(context.Background(), ListMessagesParams{
		FiscalCode: testFiscalCode,
		PageSize:   10,
	})
	if err == nil || errors.Is(err, ErrCannotEnrich) {
		t.Fatalf("err = %v, want plain query failure", err)
	}
}
