// Package tracking emits telemetry events for failures that are handled
// in-band (an enriched page fails, a lookup degrades) but still need to be
// visible to operators. Events are published best effort; tracking never
// fails the request it observes.
package tracking

import (
	"context"
	"encoding/json"
	"time"

	"messagesapp/internal/pubsub"

	"github.com/rs/zerolog"
)

// Enrichment failure kinds.
const (
	KindService = "SERVICE"
	KindContent = "CONTENT"
	KindStatus  = "STATUS"
)

type Tracker interface {
	TrackEnrichmentFailure(ctx context.Context, kind, fiscalCode, messageID, serviceID string)
	TrackCategoryFetchFailure(ctx context.Context, serviceID string)
}

type enrichmentFailureEvent struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind,omitempty"`
	FiscalCode string    `json:"fiscalCode,omitempty"`
	MessageID  string    `json:"messageId,omitempty"`
	ServiceID  string    `json:"serviceId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type tracker struct {
	publisher pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

func New(publisher pubsub.Publisher, topic string, logger zerolog.Logger) Tracker {
	return &tracker{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("component", "tracker").Logger(),
	}
}

func (t *tracker) TrackEnrichmentFailure(ctx context.Context, kind, fiscalCode, messageID, serviceID string) {
	t.publish(ctx, enrichmentFailureEvent{
		Name:       "messages.enrichment.failure",
		Kind:       kind,
		FiscalCode: fiscalCode,
		MessageID:  messageID,
		ServiceID:  serviceID,
		OccurredAt: time.Now().UTC(),
	})
}

func (t *tracker) TrackCategoryFetchFailure(ctx context.Context, serviceID string) {
	t.publish(ctx, enrichmentFailureEvent{
		Name:       "messages.category-fetch.failure",
		ServiceID:  serviceID,
		OccurredAt: time.Now().UTC(),
	})
}

func (t *tracker) publish(ctx context.Context, event enrichmentFailureEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to marshal tracking event")
		return
	}
	if _, err := t.publisher.Publish(ctx, t.topic, payload); err != nil {
		t.logger.Warn().Err(err).Str("event", event.Name).Msg("Failed to publish tracking event")
	}
}

// NewNop returns a tracker that drops every event. Used when tracking is not
// configured and in tests.
func NewNop() Tracker { return nopTracker{} }

type nopTracker struct{}

func (nopTracker) TrackEnrichmentFailure(context.Context, string, string, string, string) {}
func (nopTracker) TrackCategoryFetchFailure(context.Context, string)                      {}
