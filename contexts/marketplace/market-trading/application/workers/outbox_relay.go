package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	"scorpion/contexts/marketplace/market-trading/application"
	"scorpion/contexts/marketplace/market-trading/ports"
)

// OutboxRelay drains pending market events and publishes them to the bus.
// Failed publishes leave the row pending so the next cycle retries it.
type OutboxRelay struct {
	Outbox    ports.OutboxSource
	Publisher ports.EventPublisher
	Topic     string
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}
	topic := r.Topic
	if topic == "" {
		topic = "marketplace.market-events"
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "market_outbox_list_failed",
			"module", "marketplace/market-trading",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "market_outbox_decode_failed",
				"module", "marketplace/market-trading",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			if err := r.Outbox.MarkOutboxFailed(ctx, message.ID); err != nil {
				return err
			}
			continue
		}

		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "market_outbox_publish_failed",
				"module", "marketplace/market-trading",
				"layer", "worker",
				"outbox_id", message.ID,
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.ID); err != nil {
			logger.Error("outbox mark published failed",
				"event", "market_outbox_mark_published_failed",
				"module", "marketplace/market-trading",
				"layer", "worker",
				"outbox_id", message.ID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "market_outbox_relay_completed",
			"module", "marketplace/market-trading",
			"layer", "worker",
			"published_count", len(pending),
		)
	}
	return nil
}
