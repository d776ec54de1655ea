package llmrelay

import (
	"fmt"
	"net/http"
	"sync"
)

// ProviderOptions carries the construction-time configuration shared by all
// provider factories. Fields a provider does not need are ignored.
type ProviderOptions struct {
	// APIKey authenticates with the provider (unused by local providers)
	APIKey string

	// BaseURL overrides the provider's default endpoint (proxies, local
	// gateways). Empty means the provider default.
	BaseURL string

	// HTTPClient overrides the default HTTP client. Timeouts and transport
	// tuning belong here; the library treats a transport timeout like any
	// other transport error.
	HTTPClient *http.Client
}

// ProviderFactory constructs a provider from options.
type ProviderFactory func(opts ProviderOptions) (ChatProvider, error)

// ProviderRegistry manages runtime registration of provider factories,
// allowing library users to plug in their own providers beyond the built-in
// ones.
type ProviderRegistry struct {
	factories map[ProviderID]ProviderFactory
	mu        sync.RWMutex
}

var (
	globalProviderRegistry     *ProviderRegistry
	globalProviderRegistryOnce sync.Once
)

// GetProviderRegistry returns the global provider registry (singleton).
// Built-in providers register themselves via RegisterProvider from their
// package init, so importing a provider package makes it constructible here.
func GetProviderRegistry() *ProviderRegistry {
	globalProviderRegistryOnce.Do(func() {
		globalProviderRegistry = &ProviderRegistry{
			factories: make(map[ProviderID]ProviderFactory),
		}
	})
	return globalProviderRegistry
}

// Register adds a provider factory to the registry.
func (r *ProviderRegistry) Register(id ProviderID, factory ProviderFactory) error {
	if id == "" {
		return fmt.Errorf("provider id is required")
	}
	if factory == nil {
		return fmt.Errorf("factory function is required for provider %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("provider %s is already registered", id)
	}

	r.factories[id] = factory
	return nil
}

// New constructs a provider by id.
func (r *ProviderRegistry) New(id ProviderID, opts ProviderOptions) (ChatProvider, error) {
	r.mu.RLock()
	factory, exists := r.factories[id]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", id)
	}

	return factory(opts)
}

// IsRegistered checks if a provider factory is registered.
func (r *ProviderRegistry) IsRegistered(id ProviderID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[id]
	return exists
}

// List returns all registered provider ids.
func (r *ProviderRegistry) List() []ProviderID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ProviderID, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	return ids
}

// RegisterProvider is a convenience function that registers a factory with
// the global registry.
func RegisterProvider(id ProviderID, factory ProviderFactory) error {
	return GetProviderRegistry().Register(id, factory)
}

// NewProvider is a convenience function that constructs a provider using the
// global registry.
func NewProvider(id ProviderID, opts ProviderOptions) (ChatProvider, error) {
	return GetProviderRegistry().New(id, opts)
}
