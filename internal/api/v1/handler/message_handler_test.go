package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/middleware"
	"messagesapp/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type fakeSource struct {
	page       *dto.PaginatedMessages
	err        error
	lastParams service.ListMessagesParams
}

func (s *fakeSource) List(_ context.Context, params service.ListMessagesParams) (*dto.PaginatedMessages, error) {
	s.lastParams = params
	return s.page, s.err
}

type fakeMessageService struct {
	resp *dto.MessageResponse
	err  error
}

func (s *fakeMessageService) GetMessage(context.Context, string, string, bool) (*dto.MessageResponse, error) {
	return s.resp, s.err
}

type fakeStatusService struct {
	resp *dto.MessageStatusResponse
	err  error
}

func (s *fakeStatusService) ApplyChange(context.Context, string, string, dto.MessageStatusChange) (*dto.MessageStatusResponse, error) {
	return s.resp, s.err
}

func newTestHandler(source *fakeSource, messageSvc service.MessageService, statusSvc service.MessageStatusService) *MessageHandler {
	selector := service.NewSourceSelector(true, service.FeatureFlagNone, source, source, nil, nil)
	return NewMessageHandler(selector, messageSvc, statusSvc, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop())
}

func doRequest(h *MessageHandler, method, target, caller string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if caller != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, caller))
	}
	rec := httptest.NewRecorder()
	h.handleMessages(rec, req)
	return rec
}

const recipient = "AAABBB80A01C123D"

func TestListMessagesOK(t *testing.T) {
	source := &fakeSource{page: &dto.PaginatedMessages{
		Items: []dto.EnrichedMessage{{ID: "02"}, {ID: "01"}},
		Prev:  "02",
		Next:  "01",
	}}
	h := newTestHandler(source, &fakeMessageService{}, &fakeStatusService{})

	rec := doRequest(h, http.MethodGet, "/messages/"+recipient+"?page_size=2&enrich_result_data=true&archived=true&maximum_id=09", recipient, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var page dto.PaginatedMessages
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(page.Items) != 2 || page.Prev != "02" || page.Next != "01" {
		t.Fatalf("unexpected page: %+v", page)
	}

	params := source.lastParams
	if params.FiscalCode != recipient || params.PageSize != 2 || !params.EnrichResultData || !params.GetArchivedMessages || params.MaximumID != "09" {
		t.Fatalf("params not forwarded: %+v", params)
	}
}

func TestListMessagesDefaultsPageSize(t *testing.T) {
	source := &fakeSource{page: &dto.PaginatedMessages{}}
	h := newTestHandler(source, &fakeMessageService{}, &fakeStatusService{})

	rec := doRequest(h, http.MethodGet, "/messages/"+recipient, recipient, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if source.lastParams.PageSize != defaultPageSize {
		t.Fatalf("page size = %d, want %d", source.lastParams.PageSize, defaultPageSize)
	}
}

func TestListMessagesInvalidQuery(t *testing.T) {
	h := newTestHandler(&fakeSource{}, &fakeMessageService{}, &fakeStatusService{})

	for _, target := range []string{
		"/messages/" + recipient + "?page_size=abc",
		"/messages/" + recipient + "?page_size=0",
		"/messages/" + recipient + "?page_size=101",
		"/messages/" + recipient + "?archived=maybe",
	} {
		rec := doRequest(h, http.MethodGet, target, recipient, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestListMessagesForeignRecipient(t *testing.T) {
	h := newTestHandler(&fakeSource{}, &fakeMessageService{}, &fakeStatusService{})

	rec := doRequest(h, http.MethodGet, "/messages/"+recipient, "SOMEONE00E15H501Z", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestListMessagesCannotEnrich(t *testing.T) {
	source := &fakeSource{err: service.ErrCannotEnrich}
	h := newTestHandler(source, &fakeMessageService{}, &fakeStatusService{})

	rec := doRequest(h, http.MethodGet, "/messages/"+recipient+"?enrich_result_data=true", recipient, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var problem dto.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if problem.Title != "Cannot enrich data" {
		t.Fatalf("title = %q", problem.Title)
	}
}

func TestGetMessageNotFound(t *testing.T) {
	h := newTestHandler(&fakeSource{}, &fakeMessageService{err: service.ErrMessageNotFound}, &fakeStatusService{})

	rec := doRequest(h, http.MethodGet, "/messages/"+recipient+"/01", recipient, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUpsertMessageStatus(t *testing.T) {
	statusSvc := &fakeStatusService{resp: &dto.MessageStatusResponse{Status: "PROCESSED", Version: 1}}
	h := newTestHandler(&fakeSource{}, &fakeMessageService{}, statusSvc)

	rec := doRequest(h, http.MethodPut, "/messages/"+recipient+"/01/message-status", recipient,
		`{"change_type":"reading","is_read":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp dto.MessageStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Version != 1 {
		t.Fatalf("version = %d, want 1", resp.Version)
	}
}

func TestUpsertMessageStatusInvalidBody(t *testing.T) {
	h := newTestHandler(&fakeSource{}, &fakeMessageService{}, &fakeStatusService{})

	for _, body := range []string{
		`not json`,
		`{"change_type":"snoozing"}`,
		`{}`,
	} {
		rec := doRequest(h, http.MethodPut, "/messages/"+recipient+"/01/message-status", recipient, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestUpsertMessageStatusIncompleteChange(t *testing.T) {
	h := newTestHandler(&fakeSource{}, &fakeMessageService{}, &fakeStatusService{err: service.ErrInvalidStatusChange})

	rec := doRequest(h, http.MethodPut, "/messages/"+recipient+"/01/message-status", recipient,
		`{"change_type":"reading"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
