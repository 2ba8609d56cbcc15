package provider

import (
	"sync"

	"github.com/avelichko/maestro/internal/errors"
)

// Registry manages the providers available to the engine. It is passed
// explicitly into the components that need model inference; nothing
// resolves providers through package-level state.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Client
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Client),
	}
}

// Register adds a provider under the given name
func (r *Registry) Register(name string, client Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return errors.New(errors.ErrCodeProviderCall, "provider "+name+" already registered")
	}
	r.providers[name] = client
	return nil
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.providers[name]
	if !exists {
		return nil, errors.NewProviderNotFoundError(name)
	}
	return client, nil
}

// List returns all registered provider names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// CloseAll closes every registered provider, returning the first error
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, client := range r.providers {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.ErrCodeProviderCall, "closing provider "+name, err)
		}
		delete(r.providers, name)
	}
	return firstErr
}
