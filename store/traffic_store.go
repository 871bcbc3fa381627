package store

import (
	"context"

	"github.com/NaviFeed/navifeed-backend/types"
)

// Change describes what applying a message did to the stored view.
type Change string

const (
	// ChangeIssued means the message was not known before.
	ChangeIssued Change = "ISSUED"
	// ChangeUpdated means the message replaced an earlier one with the
	// same identifier.
	ChangeUpdated Change = "UPDATED"
	// ChangeCancelled means a cancellation removed the identified message.
	ChangeCancelled Change = "CANCELLED"
	// ChangeNone means a cancellation referenced an unknown identifier;
	// there was nothing to withdraw.
	ChangeNone Change = "NONE"
)

// TrafficStore holds the consumer's view of the active traffic messages.
// A message with a known identifier replaces the earlier one; a cancellation
// withdraws it. Expired messages are advisory-stale and are dropped by
// PurgeExpired.
type TrafficStore interface {
	// Apply folds one provider message into the view and reports the
	// resulting change.
	Apply(ctx context.Context, msg *types.TrafficMessage) (Change, error)

	// GetByID returns the active message with the given identifier, or
	// ErrNotFound.
	GetByID(ctx context.Context, id string) (*types.TrafficMessage, error)

	// List returns all active messages.
	List(ctx context.Context) ([]*types.TrafficMessage, error)

	// PurgeExpired removes messages whose expiration lies in the past and
	// returns the removed ones.
	PurgeExpired(ctx context.Context) ([]*types.TrafficMessage, error)
}
