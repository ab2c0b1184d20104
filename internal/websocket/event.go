package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dafibh/budget-ledger/internal/domain"
)

// EventType represents what happened to a collection
type EventType string

const (
	EventTypeReplaced EventType = "replaced"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string                `json:"type"`   // Combined type e.g. "expenses.replaced"
	Entity    domain.CollectionKind `json:"entity"` // Collection e.g. "expenses"
	Payload   interface{}           `json:"payload"`
	Timestamp time.Time             `json:"timestamp"`
}

// NewEvent creates a new event for a collection
func NewEvent(eventType EventType, kind domain.CollectionKind, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", kind, eventType),
		Entity:    kind,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CollectionReplaced creates a <collection>.replaced event. Clients refetch the
// collection; the payload only carries its new size.
func CollectionReplaced(change domain.CollectionReplaced) Event {
	event := NewEvent(EventTypeReplaced, change.Kind, change)
	if !change.ReplacedAt.IsZero() {
		event.Timestamp = change.ReplacedAt.UTC()
	}
	return event
}
