// Package registry indexes mock definitions by route.
package registry

import (
	"github.com/Tynarus/apily/mock"
)

type (
	// Registry groups definitions by route key in registration order. It is never modified after
	// construction, so it can be read from any number of goroutines.
	Registry struct {
		routes      map[string][]*mock.Definition
		definitions []*mock.Definition
	}

	// Builder collects definitions before the registry is built
	Builder struct {
		definitions []*mock.Definition
	}
)

// New indexes the given definitions, keeping their order within each route
func New(definitions ...*mock.Definition) *Registry {
	r := &Registry{
		routes:      map[string][]*mock.Definition{},
		definitions: make([]*mock.Definition, 0, len(definitions)),
	}

	for _, def := range definitions {
		if def == nil {
			continue
		}

		key := def.RouteKey()
		r.routes[key] = append(r.routes[key], def)
		r.definitions = append(r.definitions, def)
	}

	return r
}

// NewBuilder returns an empty Builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Register validates the options and queues the resulting definition.
// Nothing is queued when the options are rejected.
func (b *Builder) Register(o mock.Options) (*mock.Definition, error) {
	def, err := mock.New(o)
	if err != nil {
		return nil, err
	}

	b.definitions = append(b.definitions, def)

	return def, nil
}

// MustRegister is Register but panics on invalid options
func (b *Builder) MustRegister(o mock.Options) *mock.Definition {
	def, err := b.Register(o)
	if err != nil {
		panic(err)
	}

	return def
}

// Build returns a registry holding everything registered so far
func (b *Builder) Build() *Registry {
	return New(b.definitions...)
}

// Lookup returns the definitions registered for url and method in registration order.
// The returned slice must not be modified.
func (r *Registry) Lookup(url, method string) ([]*mock.Definition, bool) {
	defs, ok := r.routes[mock.RouteKey(url, method)]

	return defs, ok
}

// Definitions returns every definition in registration order
func (r *Registry) Definitions() []*mock.Definition {
	defs := make([]*mock.Definition, len(r.definitions))
	copy(defs, r.definitions)

	return defs
}

// Len is the number of registered definitions
func (r *Registry) Len() int {
	return len(r.definitions)
}
