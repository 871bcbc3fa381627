package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/NaviFeed/navifeed-backend/types"
)

// MemoryTrafficStore is the in-memory TrafficStore. Message data lives only
// between provider polls and consumer reads, so nothing is persisted.
type MemoryTrafficStore struct {
	mu       sync.RWMutex
	messages map[string]*types.TrafficMessage
	now      func() time.Time
}

// NewMemoryTrafficStore creates an empty in-memory store.
func NewMemoryTrafficStore() *MemoryTrafficStore {
	return &MemoryTrafficStore{
		messages: make(map[string]*types.TrafficMessage),
		now:      time.Now,
	}
}

// Apply folds one provider message into the view.
func (s *MemoryTrafficStore) Apply(ctx context.Context, msg *types.TrafficMessage) (Change, error) {
	if msg == nil {
		return ChangeNone, fmt.Errorf("apply: message must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.messages[msg.ID]

	if msg.IsCancellation() {
		if !known {
			return ChangeNone, nil
		}
		delete(s.messages, msg.ID)
		return ChangeCancelled, nil
	}

	s.messages[msg.ID] = msg
	if known {
		return ChangeUpdated, nil
	}
	return ChangeIssued, nil
}

// GetByID returns the active message with the given identifier.
func (s *MemoryTrafficStore) GetByID(ctx context.Context, id string) (*types.TrafficMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok || msg.IsExpired(s.now()) {
		return nil, fmt.Errorf("get message %s: %w", id, ErrNotFound)
	}
	return msg, nil
}

// List returns all active messages, sorted by identifier for stable output.
func (s *MemoryTrafficStore) List(ctx context.Context) ([]*types.TrafficMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]*types.TrafficMessage, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.IsExpired(now) {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PurgeExpired removes messages whose expiration lies in the past.
func (s *MemoryTrafficStore) PurgeExpired(ctx context.Context) ([]*types.TrafficMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []*types.TrafficMessage
	for id, msg := range s.messages {
		if msg.IsExpired(now) {
			removed = append(removed, msg)
			delete(s.messages, id)
		}
	}
	return removed, nil
}
