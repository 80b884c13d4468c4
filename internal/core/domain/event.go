package domain

import (
	"encoding/json"
	"time"
)

const (
	CurrentEventSchemaVersion = 1

	EventRegistrationAccepted = "registration.accepted"
	RegistrationTopic         = "events.registration.accepted"
)

type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	SchemaVersion int             `json:"schema_version"`
	RequestID     string          `json:"request_id,omitempty"`
	Source        string          `json:"source"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// RegistrationAccepted is the payload of a registration.accepted event.
type RegistrationAccepted struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func NewRegistrationAccepted(r Registration) RegistrationAccepted {
	return RegistrationAccepted{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		City:      r.City,
		Country:   r.Country,
	}
}
