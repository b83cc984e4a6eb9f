// Package docgen builds the documentation model of registered Go types and
// runs documentation hooks over it.
package docgen

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry is an ordered set of named types to document.
type Registry struct {
	mu    sync.RWMutex
	types []reflect.Type
	seen  map[reflect.Type]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: map[reflect.Type]bool{}}
}

// Default is the registry the command line documents. Packages add their
// types to it from init functions and are linked in with blank imports.
var Default = NewRegistry()

// Register adds the types of values to Default.
func Register(values ...any) { Default.Register(values...) }

// Register adds types in call order. A value may be a reflect.Type, an
// instance or a pointer to an instance. Registering a type twice keeps the
// first position. It panics on unnamed types.
func (r *Registry) Register(values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range values {
		t, ok := v.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(v)
		}
		for t != nil && t.Kind() == reflect.Pointer && t.Name() == "" {
			t = t.Elem()
		}
		if t == nil || t.Name() == "" {
			panic(fmt.Sprintf("docgen: cannot register unnamed type %v", t))
		}
		if r.seen[t] {
			continue
		}
		r.seen[t] = true
		r.types = append(r.types, t)
	}
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]reflect.Type(nil), r.types...)
}

// Has reports whether t is registered.
func (r *Registry) Has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seen[t]
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}
