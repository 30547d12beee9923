package languages

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a Support instance.
type Factory func() (Support, error)

// Registry maps language keywords to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs f for name, replacing any previous factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		delete(r.factories, name)
		return
	}
	r.factories[name] = f
}

// Unregister removes the factory for name.
func (r *Registry) Unregister(name string) {
	r.Register(name, nil)
}

// Create builds the support for name. It returns ErrSupportNotFound when no
// factory is installed.
func (r *Registry) Create(name string) (Support, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSupportNotFound, name)
	}
	s, err := f()
	if err != nil {
		return nil, fmt.Errorf("languages: create %s support: %w", name, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s factory returned nothing", ErrSupportNotFound, name)
	}
	return s, nil
}

// Names returns the registered keywords in sorted order.
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

// NewTemplateRegistry registers a TemplateSupport factory for every definition.
func NewTemplateRegistry(defs []Definition, opts Options) (*Registry, error) {
	r := NewRegistry()
	for _, def := range defs {
		def := def
		if _, err := compile(def); err != nil {
			return nil, err
		}
		r.Register(def.Name, func() (Support, error) {
			return NewTemplateSupport(def, opts)
		})
	}
	return r, nil
}
