package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NaviFeed/navifeed-backend/logger"
)

// Registry holds the named factories of the "traffic" provider category.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a named factory. Registering the same name twice is an error.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("provider name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for provider %s must not be nil", name)
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.factories[name] = factory
	logger.GetLogger().Infow("Registered traffic provider", "name", name)
	return nil
}

// New builds a provider instance by name.
func (r *Registry) New(name string, cfg Config) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no traffic provider registered under %q", name)
	}
	return factory(cfg)
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry backs the package-level registration used by provider
// packages in their init functions, mirroring database/sql driver wiring.
var defaultRegistry = NewRegistry()

// Register adds a named factory to the default registry. It panics on
// duplicate registration, which indicates a programming error at startup.
func Register(name string, factory Factory) {
	if err := defaultRegistry.Register(name, factory); err != nil {
		panic(err)
	}
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}
