package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

const eventSource = "regintake"

func newRegistrationEvent(reg domain.Registration, requestID string, at time.Time) (domain.EventEnvelope, error) {
	payload, err := json.Marshal(domain.NewRegistrationAccepted(reg))
	if err != nil {
		return domain.EventEnvelope{}, fmt.Errorf("marshal registration payload: %w", err)
	}
	return domain.EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     domain.EventRegistrationAccepted,
		SchemaVersion: domain.CurrentEventSchemaVersion,
		RequestID:     requestID,
		Source:        eventSource,
		OccurredAt:    at.UTC(),
		Payload:       payload,
	}, nil
}
