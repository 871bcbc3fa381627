package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NaviFeed/navifeed-backend/errors"
)

type EventType string

const (
	CategoryMessage  = "MESSAGE"
	CategoryProvider = "PROVIDER"
)

const (
	// Message lifecycle events
	EventTypeMessageIssued    EventType = CategoryMessage + "_ISSUED"
	EventTypeMessageUpdated   EventType = CategoryMessage + "_UPDATED"
	EventTypeMessageCancelled EventType = CategoryMessage + "_CANCELLED"
	EventTypeMessageExpired   EventType = CategoryMessage + "_EXPIRED"

	// Provider events
	EventTypeProviderPolled EventType = CategoryProvider + "_POLLED"
	EventTypeProviderFailed EventType = CategoryProvider + "_FAILED"
)

// BaseEvent carries the fields common to every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// EventMetadata for tracking and debugging
type EventMetadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	Source        string            `json:"source"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// Event is the envelope published for every message lifecycle transition.
type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// Validate checks the envelope fields required by every publisher.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.Provider == "" {
		return errors.ValidationFailed("invalid event", "provider name is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher distributes traffic events to consumers. Feeds are keyed by
// provider name.
type EventPublisher interface {
	Publish(ctx context.Context, provider string, event Event) error
	PublishBatch(ctx context.Context, provider string, events []Event) error
	Subscribe(ctx context.Context, provider string, consumerID string, filters ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, provider string, consumerID string) error
}

// EventHandler for processing events routed locally.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
	SupportedEvents() []EventType
}
