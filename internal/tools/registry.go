// Package tools holds the local tools the model may pick instead of chatting
// or calling an API. A tool takes the model's query string and returns text.
package tools

import (
	"context"
	"fmt"
	"sort"
)

// Func is a single-argument tool handler.
type Func func(ctx context.Context, query string) (string, error)

// Registry maps tool names to handlers. It is populated during startup and
// only read afterwards.
type Registry struct {
	tools map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Func)}
}

// Register adds a tool. Returns an error if the name is empty or taken.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if fn == nil {
		return fmt.Errorf("tool %q has nil handler", name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = fn
	return nil
}

// MustRegister adds a tool and panics on error.
func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the handler for name, or nil.
func (r *Registry) Get(name string) Func {
	return r.tools[name]
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
