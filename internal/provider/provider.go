// Package provider defines the contract between the traffic framework and
// provider plugins, and the registry through which plugins are wired in.
package provider

import (
	"context"

	"github.com/NaviFeed/navifeed-backend/types"
)

// Provider is a source of traffic messages. The framework polls each
// registered provider from a single goroutine; implementations may therefore
// keep unsynchronized per-instance state.
//
// Ownership of returned messages passes to the caller. Providers must build
// fresh instances on every poll and hold no references to them afterwards.
type Provider interface {
	Name() string

	// GetMessages reports the messages that became known since the last
	// poll. A NoUpdate result means there is nothing new; it is not an
	// error and is distinct from an empty batch.
	GetMessages(ctx context.Context) (types.PollResult, error)
}

// Config carries everything a factory needs to build a provider instance.
// The host application handle is passed explicitly and retained only as an
// opaque back-reference, never as ambient global state.
type Config struct {
	// Host is an opaque back-reference to the owning application.
	Host any
	// Attributes carries provider-specific settings from configuration.
	Attributes map[string]string
}

// Factory constructs a provider instance for the host application.
type Factory func(cfg Config) (Provider, error)
