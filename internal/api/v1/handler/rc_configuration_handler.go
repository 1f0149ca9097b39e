package handler

import (
	"errors"
	"net/http"
	"strings"

	"messagesapp/internal/service"

	"github.com/rs/zerolog"
)

// RCConfigurationHandler handles remote-content configuration endpoints
type RCConfigurationHandler struct {
	configSvc service.RCConfigurationService
	logger    zerolog.Logger
}

// NewRCConfigurationHandler creates a new RCConfigurationHandler
func NewRCConfigurationHandler(configSvc service.RCConfigurationService, logger zerolog.Logger) *RCConfigurationHandler {
	return &RCConfigurationHandler{
		configSvc: configSvc,
		logger:    logger.With().Str("handler", "rc_configuration").Logger(),
	}
}

// RegisterRoutes mounts remote-content configuration routes
func (h *RCConfigurationHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/remote-contents/configurations/", authMw(http.HandlerFunc(h.getConfiguration)))
}

// getConfiguration godoc
// @Summary Retrieve a remote-content configuration
// @Description Returns the latest version of the configuration with the given id.
// @Tags remote-contents
// @Produce json
// @Param id path string true "Configuration id"
// @Success 200 {object} dto.RCConfigurationResponse
// @Failure 404 {object} dto.Problem "Configuration not found"
// @Router /remote-contents/configurations/{id} [get]
func (h *RCConfigurationHandler) getConfiguration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	configurationID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/remote-contents/configurations/"), "/")
	if configurationID == "" || strings.Contains(configurationID, "/") {
		http.NotFound(w, r)
		return
	}

	resp, err := h.configSvc.GetConfiguration(r.Context(), configurationID)
	if err != nil {
		if errors.Is(err, service.ErrConfigurationNotFound) {
			writeProblem(w, http.StatusNotFound, "Not found", "no configuration found for the given id")
			return
		}
		h.logger.Error().Err(err).Str("configuration_id", configurationID).Msg("Failed to retrieve configuration")
		writeProblem(w, http.StatusInternalServerError, "Internal server error", "failed to retrieve configuration")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
