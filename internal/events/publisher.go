package events

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/NaviFeed/navifeed-backend/errors"
	"github.com/NaviFeed/navifeed-backend/types"
	"github.com/google/uuid"
)

// PublishEventWithContext is a helper to publish events with consistent
// structure. It constructs a standard types.Event and publishes it using the
// provided publisher.
func PublishEventWithContext(publisher types.EventPublisher, ctx context.Context, eventType types.EventType, provider string, payload interface{}, source string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ServerError, "failed to marshal event payload")
	}

	event := types.Event{
		BaseEvent: types.BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Provider:  provider,
			Timestamp: time.Now(),
			Version:   1,
		},
		Metadata: types.EventMetadata{
			Source: source,
		},
		Payload: data,
	}

	if err := publisher.Publish(ctx, provider, event); err != nil {
		return apperrors.Wrap(err, apperrors.ServerError, "failed to publish event")
	}

	return nil
}
