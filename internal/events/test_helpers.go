package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NaviFeed/navifeed-backend/types"
)

// mockHandler is a test implementation of the EventHandler interface
type mockHandler struct {
	mu              sync.Mutex
	events          []types.Event
	supportedTypes  []types.EventType
	shouldError     bool
	handlerLatency  time.Duration
	handlerBlocking bool
}

func newMockHandler(supportedTypes ...types.EventType) *mockHandler {
	return &mockHandler{
		events:         make([]types.Event, 0),
		supportedTypes: supportedTypes,
	}
}

func (h *mockHandler) HandleEvent(ctx context.Context, event types.Event) error {
	if h.handlerLatency > 0 {
		time.Sleep(h.handlerLatency)
	}

	if h.handlerBlocking {
		<-ctx.Done()
		return ctx.Err()
	}

	if h.shouldError {
		return fmt.Errorf("mock handler error")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *mockHandler) SupportedEvents() []types.EventType {
	return h.supportedTypes
}

func (h *mockHandler) GetEvents() []types.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}
