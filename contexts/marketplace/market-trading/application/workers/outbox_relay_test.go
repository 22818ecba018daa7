package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"scorpion/contexts/marketplace/market-trading/adapters/memory"
	"scorpion/contexts/marketplace/market-trading/ports"
)

type capturePublisher struct {
	topics []string
	events []ports.EventEnvelope
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, id string, eventType string) {
	t.Helper()
	raw, err := json.Marshal(ports.EventEnvelope{
		EventID:        id,
		EventType:      eventType,
		SourceService:  "marketplace/market-trading",
		OccurredAtUTC:  time.Now().UTC(),
		EntityType:     "market_item",
		EntityID:       "1",
		PayloadVersion: 1,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if err := store.AppendOutbox(context.Background(), ports.OutboxMessage{
		ID:        id,
		EventType: eventType,
		Payload:   raw,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append outbox: %v", err)
	}
}

func TestOutboxRelayPublishesPending(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	appendEnvelope(t, store, "msg-1", ports.EventTypeMarketItemListed)
	appendEnvelope(t, store, "msg-2", ports.EventTypeMarketItemPurchased)

	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("published %d events, want 2", len(publisher.events))
	}
	for _, topic := range publisher.topics {
		if topic != "marketplace.market-events" {
			t.Fatalf("unexpected topic %s", topic)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, %d still pending", len(pending))
	}
}

func TestOutboxRelayMarksUndecodablePayloadFailed(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}
	if err := store.AppendOutbox(context.Background(), ports.OutboxMessage{
		ID:        "broken",
		EventType: ports.EventTypeMarketItemListed,
		Payload:   []byte("{not json"),
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append outbox: %v", err)
	}
	appendEnvelope(t, store, "msg-1", ports.EventTypeMarketItemListed)

	relay := OutboxRelay{Outbox: store, Publisher: publisher}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if len(publisher.events) != 1 || publisher.events[0].EventID != "msg-1" {
		t.Fatalf("expected only the valid message published, got %+v", publisher.events)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("broken message should not stay pending")
	}
}
