package vcs

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a CommentSink from a token and a pull-request target.
type Factory func(token string, target Target) (CommentSink, error)

// Registry is a thread-safe store of comment sink factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a sink factory under the given name.
// It panics if the name is already registered.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("vcs: factory already registered for %q", name))
	}
	r.factories[name] = f
}

// Get creates a sink instance by name.
func (r *Registry) Get(name, token string, target Target) (CommentSink, error) {
	r.mu.RLock()
	f, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("vcs: unknown sink %q (registered: %v)", name, r.Names())
	}
	return f(token, target)
}

// Names returns a sorted list of registered sink names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register adds a sink factory to the global registry.
func Register(name string, f Factory) {
	globalRegistry.Register(name, f)
}

// Get resolves a sink by name from the global registry.
func Get(name, token string, target Target) (CommentSink, error) {
	return globalRegistry.Get(name, token, target)
}

// Names returns all registered sink names from the global registry.
func Names() []string {
	return globalRegistry.Names()
}
