package messaging

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"scorpion/contexts/marketplace/market-trading/ports"
)

// TopicMarketEvents is the single stream carrying market-trading envelopes.
// Minted, listed and purchased events share one topic so consumers observe
// them in outbox order.
const TopicMarketEvents = "marketplace.market-events"

// subscriberBuffer bounds how far a consumer may lag before publishes to it
// are dropped.
const subscriberBuffer = 128

type subscription struct {
	group string
	ch    chan ports.EventEnvelope
}

// Bus is the in-process event fan-out behind the worker's outbox relay. The
// relay only sees the ports.EventPublisher contract, so an external broker
// can replace this without touching the relay.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscription
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if topic == "" {
		return errors.New("messaging: publish topic is required")
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.topics[topic]...)
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub.ch <- event:
			delivered++
		default:
			if b.logger != nil {
				b.logger.Warn("dropping event for lagging consumer",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
				)
			}
		}
	}

	if b.logger != nil {
		b.logger.Info("event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"delivered", delivered,
		)
	}
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if topic == "" {
		return errors.New("messaging: subscribe topic is required")
	}
	sub := subscription{
		group: consumerGroup,
		ch:    make(chan ports.EventEnvelope, subscriberBuffer),
	}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	b.mu.Unlock()

	go b.consume(ctx, topic, sub, handler)
	return nil
}

func (b *Bus) consume(
	ctx context.Context,
	topic string,
	sub subscription,
	handler func(context.Context, ports.EventEnvelope) error,
) {
	for {
		select {
		case <-ctx.Done():
			b.drop(topic, sub.ch)
			return
		case event := <-sub.ch:
			if err := handler(ctx, event); err != nil && b.logger != nil {
				b.logger.Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", sub.group,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

func (b *Bus) drop(topic string, target chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	if len(subs) == 0 {
		return
	}
	filtered := make([]subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.ch != target {
			filtered = append(filtered, sub)
		}
	}
	b.topics[topic] = filtered
}
