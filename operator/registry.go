// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package operator // import "github.com/logmerge/multiline/operator"

import (
	"sort"
	"sync"
)

// DefaultRegistry is a global registry of operator types to operator builders.
var DefaultRegistry = NewRegistry()

// Registry is used to track and retrieve known operator types
type Registry struct {
	mux       sync.RWMutex
	operators map[string]func() Builder
}

// NewRegistry creates a new registry
func NewRegistry() *Registry {
	return &Registry{
		operators: make(map[string]func() Builder),
	}
}

// Register will register a function to an operator type.
// This function will return a builder for the supplied type.
func (r *Registry) Register(operatorType string, newBuilder func() Builder) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.operators[operatorType] = newBuilder
}

// Lookup looks up a given operator type. Its second return value will
// be false if no builder is registered for that type.
func (r *Registry) Lookup(configType string) (func() Builder, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	b, ok := r.operators[configType]
	return b, ok
}

// Types returns the registered operator types in sorted order.
func (r *Registry) Types() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	types := make([]string, 0, len(r.operators))
	for t := range r.operators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Register will register an operator in the default registry
func Register(operatorType string, newBuilder func() Builder) {
	DefaultRegistry.Register(operatorType, newBuilder)
}

// Lookup looks up a given operator type. Its second return value will
// be false if no builder is registered for that type.
func Lookup(configType string) (func() Builder, bool) {
	return DefaultRegistry.Lookup(configType)
}
