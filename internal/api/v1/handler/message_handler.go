package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"messagesapp/internal/api/v1/dto"
	"messagesapp/internal/middleware"
	"messagesapp/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const defaultPageSize = 100

// MessageHandler handles message listing, retrieval and status endpoints
type MessageHandler struct {
	selector   *service.SourceSelector
	messageSvc service.MessageService
	statusSvc  service.MessageStatusService
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(
	selector *service.SourceSelector,
	messageSvc service.MessageService,
	statusSvc service.MessageStatusService,
	validate *validator.Validate,
	logger zerolog.Logger,
) *MessageHandler {
	return &MessageHandler{
		selector:   selector,
		messageSvc: messageSvc,
		statusSvc:  statusSvc,
		validate:   validate,
		logger:     logger.With().Str("handler", "message").Logger(),
	}
}

// RegisterRoutes mounts message routes
func (h *MessageHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/messages/", authMw(http.HandlerFunc(h.handleMessages)))
}

// handleMessages dispatches on the path below /messages/:
//
//	{fiscalcode}                        GET list
//	{fiscalcode}/{id}                   GET single message
//	{fiscalcode}/{id}/message-status    PUT status change
func (h *MessageHandler) handleMessages(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/messages/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	fiscalCode := parts[0]
	if fiscalCode == "" {
		http.NotFound(w, r)
		return
	}
	caller, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || caller == "" {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated user in context")
		return
	}
	if caller != fiscalCode {
		writeProblem(w, http.StatusForbidden, "Forbidden", "token subject does not match the requested recipient")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.listMessages(w, r, fiscalCode)
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.getMessage(w, r, fiscalCode, parts[1])
	case len(parts) == 3 && parts[2] == "message-status" && r.Method == http.MethodPut:
		h.upsertMessageStatus(w, r, fiscalCode, parts[1])
	default:
		http.NotFound(w, r)
	}
}

// listMessages godoc
// @Summary List messages for a recipient
// @Description Returns one page of the recipient's messages, newest first. With enrich_result_data the items carry status, title, sender display data and category.
// @Tags messages
// @Produce json
// @Param fiscalcode path string true "Recipient fiscal code"
// @Param page_size query int false "Page size (1-100)"
// @Param maximum_id query string false "Return messages older than this id"
// @Param minimum_id query string false "Return messages newer than this id"
// @Param enrich_result_data query bool false "Enrich items with status and content data"
// @Param archived query bool false "List archived messages instead of the inbox"
// @Success 200 {object} dto.PaginatedMessages
// @Failure 400 {object} dto.Problem "Invalid query parameters"
// @Failure 500 {object} dto.Problem "Cannot enrich data"
// @Router /messages/{fiscalcode} [get]
func (h *MessageHandler) listMessages(w http.ResponseWriter, r *http.Request, fiscalCode string) {
	query, err := parseListQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	if err := h.validate.Struct(query); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	source := h.selector.Select(fiscalCode)
	page, err := source.List(r.Context(), service.ListMessagesParams{
		FiscalCode:          fiscalCode,
		PageSize:            query.PageSize,
		MaximumID:           query.MaximumID,
		MinimumID:           query.MinimumID,
		EnrichResultData:    query.EnrichResultData,
		GetArchivedMessages: query.GetArchivedMessages,
	})
	if err != nil {
		if errors.Is(err, service.ErrCannotEnrich) {
			writeProblem(w, http.StatusInternalServerError, "Cannot enrich data", "one or more messages could not be enriched")
			return
		}
		h.logger.Error().Err(err).Str("fiscal_code", fiscalCode).Msg("Failed to list messages")
		writeProblem(w, http.StatusInternalServerError, "Internal server error", "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// getMessage godoc
// @Summary Retrieve one message
// @Description Returns the message with its content. With public_message the read/archived state, sender display data and category are included.
// @Tags messages
// @Produce json
// @Param fiscalcode path string true "Recipient fiscal code"
// @Param id path string true "Message id"
// @Param public_message query bool false "Include public status and sender data"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.Problem "Message not found"
// @Router /messages/{fiscalcode}/{id} [get]
func (h *MessageHandler) getMessage(w http.ResponseWriter, r *http.Request, fiscalCode, messageID string) {
	withPublicData, err := parseBoolParam(r, "public_message")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}

	resp, err := h.messageSvc.GetMessage(r.Context(), fiscalCode, messageID, withPublicData)
	if err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			writeProblem(w, http.StatusNotFound, "Not found", "no message found for the given id")
			return
		}
		h.logger.Error().Err(err).Str("message_id", messageID).Msg("Failed to retrieve message")
		writeProblem(w, http.StatusInternalServerError, "Internal server error", "failed to retrieve message")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// upsertMessageStatus godoc
// @Summary Change a message's read or archived state
// @Description Appends a new status version applying the requested change.
// @Tags messages
// @Accept json
// @Produce json
// @Param fiscalcode path string true "Recipient fiscal code"
// @Param id path string true "Message id"
// @Param change body dto.MessageStatusChange true "Status change request"
// @Success 200 {object} dto.MessageStatusResponse
// @Failure 400 {object} dto.Problem "Invalid change body"
// @Failure 404 {object} dto.Problem "Message not found"
// @Router /messages/{fiscalcode}/{id}/message-status [put]
func (h *MessageHandler) upsertMessageStatus(w http.ResponseWriter, r *http.Request, fiscalCode, messageID string) {
	var change dto.MessageStatusChange
	if err := json.NewDecoder(r.Body).Decode(&change); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "Invalid JSON payload: "+err.Error())
		return
	}
	if err := h.validate.Struct(&change); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "Validation failed: "+err.Error())
		return
	}

	resp, err := h.statusSvc.ApplyChange(r.Context(), fiscalCode, messageID, change)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeProblem(w, http.StatusNotFound, "Not found", "no message found for the given id")
		case errors.Is(err, service.ErrInvalidStatusChange):
			writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		default:
			h.logger.Error().Err(err).Str("message_id", messageID).Msg("Failed to upsert message status")
			writeProblem(w, http.StatusInternalServerError, "Internal server error", "failed to update message status")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (*dto.ListMessagesQuery, error) {
	query := &dto.ListMessagesQuery{PageSize: defaultPageSize}

	if raw := r.URL.Query().Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("page_size must be an integer")
		}
		query.PageSize = size
	}
	query.MaximumID = r.URL.Query().Get("maximum_id")
	query.MinimumID = r.URL.Query().Get("minimum_id")

	var err error
	if query.EnrichResultData, err = parseBoolParam(r, "enrich_result_data"); err != nil {
		return nil, err
	}
	if query.GetArchivedMessages, err = parseBoolParam(r, "archived"); err != nil {
		return nil, err
	}
	return query, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return value, nil
}
