package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates an instance of T from a config map.
type Factory[T any] func(config map[string]string) (T, error)

// Registry holds named factories for creating instances of T.
// Backends register themselves from init(), so registration panics on a
// duplicate name rather than silently replacing it.
type Registry[T any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// New creates a new empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a named factory to the registry.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("registry: backend %q registered twice", name))
	}
	r.factories[name] = factory
}

// Create instantiates T using the named factory.
func (r *Registry[T]) Create(name string, config map[string]string) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown backend %q (have %v)", name, r.List())
	}

	return factory(config)
}

// Has returns true if the named factory exists.
func (r *Registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// List returns all registered factory names, sorted.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
