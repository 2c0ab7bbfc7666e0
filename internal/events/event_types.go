package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/hr-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEntityCreated    EventType = "entity_created"
	EventEntityUpdated    EventType = "entity_updated"
	EventEntityDeleted    EventType = "entity_deleted"
	EventAuditWriteFailed EventType = "audit_write_failed"
	EventCascadeFailed    EventType = "cascade_failed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	Entity    domain.EntityRef `json:"entity"`
	ActorID   string           `json:"actor_id"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload,omitempty"`
}

// New builds an event with a fresh id and the current time.
func New(eventType EventType, entity domain.EntityRef, actorID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    entity,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EntityUpdatedPayload payload.
type EntityUpdatedPayload struct {
	Changes domain.ChangeSet `json:"changes"`
}

// FailurePayload describes a secondary step that failed after a committed mutation.
type FailurePayload struct {
	Action domain.AuditAction `json:"action"`
	Error  string             `json:"error"`
}
