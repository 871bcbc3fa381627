package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/NaviFeed/navifeed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishEventWithContext(t *testing.T) {
	publisher := NewMockPublisher()
	defer publisher.Close()

	payload := map[string]string{"id": "dummy:A9-68-67"}
	err := PublishEventWithContext(publisher, context.Background(),
		types.EventTypeMessageIssued, "dummy", payload, "test_source")
	require.NoError(t, err)

	published := publisher.GetEvents("dummy")
	require.Len(t, published, 1)

	event := published[0]
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, types.EventTypeMessageIssued, event.Type)
	assert.Equal(t, "dummy", event.Provider)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "test_source", event.Metadata.Source)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestPublishEventWithContext_UnmarshalablePayload(t *testing.T) {
	publisher := NewMockPublisher()
	defer publisher.Close()

	// Channels cannot be serialized to JSON
	err := PublishEventWithContext(publisher, context.Background(),
		types.EventTypeMessageIssued, "dummy", make(chan int), "test_source")
	assert.Error(t, err)
	assert.Empty(t, publisher.GetEvents("dummy"))
}

func TestMockPublisher_SubscribeReceivesPublished(t *testing.T) {
	publisher := NewMockPublisher()
	defer publisher.Close()

	ch, err := publisher.Subscribe(context.Background(), "dummy", "consumer-1")
	require.NoError(t, err)

	event := testEvent(types.EventTypeMessageUpdated)
	require.NoError(t, publisher.Publish(context.Background(), "dummy", event))

	received := <-ch
	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, types.EventTypeMessageUpdated, received.Type)
}

func TestMockPublisher_ClosedRejectsPublish(t *testing.T) {
	publisher := NewMockPublisher()
	publisher.Close()

	err := publisher.Publish(context.Background(), "dummy", testEvent(types.EventTypeMessageIssued))
	assert.Error(t, err)
}
