package events

import (
	"context"
	"log/slog"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, event domain.EventEnvelope) error {
	p.logger.InfoContext(ctx, "event published",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"request_id", event.RequestID,
		"schema_version", event.SchemaVersion,
	)
	return nil
}
