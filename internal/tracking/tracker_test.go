package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type capturingPublisher struct {
	topic    string
	payloads [][]byte
	err      error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, payload []byte) (string, error) {
	p.topic = topic
	p.payloads = append(p.payloads, payload)
	return "id-1", p.err
}

func TestTrackEnrichmentFailure(t *testing.T) {
	pub := &capturingPublisher{}
	tr := New(pub, "failures", zerolog.Nop())

	tr.TrackEnrichmentFailure(context.Background(), KindContent, "AAABBB80A01C123D", "01", "svc-1")

	if pub.topic != "failures" {
		t.Fatalf("topic = %q, want failures", pub.topic)
	}
	if len(pub.payloads) != 1 {
		t.Fatalf("got %d events, want 1", len(pub.payloads))
	}

	var event enrichmentFailureEvent
	if err := json.Unmarshal(pub.payloads[0], &event); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if event.Name != "messages.enrichment.failure" || event.Kind != KindContent || event.MessageID != "01" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.OccurredAt.IsZero() {
		t.Error("occurredAt not set")
	}
}

func TestTrackingIsBestEffort(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("broker down")}
	tr := New(pub, "failures", zerolog.Nop())

	// Must not panic or propagate the publish failure.
	tr.TrackCategoryFetchFailure(context.Background(), "svc-1")

	if len(pub.payloads) != 1 {
		t.Fatalf("got %d events, want the attempted publish", len(pub.payloads))
	}
}
