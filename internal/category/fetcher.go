package category

import (
	"context"

	"messagesapp/internal/tracking"

	"github.com/rs/zerolog"
)

// configFetcher recognizes third-party services from static configuration:
// today the only registered integration is PN. An unregistered sender is not
// an error for the caller, but it is tracked — a third-party payload from an
// unknown service points at a configuration gap.
type configFetcher struct {
	pnServiceID string
	tracker     tracking.Tracker
	logger      zerolog.Logger
}

func NewConfigFetcher(pnServiceID string, tracker tracking.Tracker, logger zerolog.Logger) Fetcher {
	return &configFetcher{
		pnServiceID: pnServiceID,
		tracker:     tracker,
		logger:      logger.With().Str("component", "category-fetcher").Logger(),
	}
}

func (f *configFetcher) Fetch(ctx context.Context, serviceID string) string {
	if f.pnServiceID != "" && serviceID == f.pnServiceID {
		return TagPN
	}
	f.logger.Warn().Str("service_id", serviceID).Msg("Third-party payload from unregistered service, defaulting to GENERIC")
	f.tracker.TrackCategoryFetchFailure(ctx, serviceID)
	return TagGeneric
}
