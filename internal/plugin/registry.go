// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package plugin

import (
	"log/slog"
	"sync"
)

// Registry is the keyed store of loaded plugin descriptors. It is
// thread-safe and never fails: registering a second plugin under an
// existing name overwrites the prior entry in place, keeping its original
// position in registration order. Last-writer-wins is a deliberate,
// tested contract (it allows a user-declared plugin to replace a shared
// one); the overwrite is always logged.
type Registry struct {
	byName map[string]*Plugin
	order  []string
	mu     sync.RWMutex
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Plugin),
	}
}

// RegisterPlugin inserts or overwrites a plugin by name.
func (r *Registry) RegisterPlugin(p *Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[p.Name]; ok {
		slog.Warn("plugin conflict: overwriting existing plugin",
			"plugin", p.Name,
			"previous_source", existing.Source,
			"new_source", p.Source)
	} else {
		r.order = append(r.order, p.Name)
	}
	r.byName[p.Name] = p
}

// GetPlugin returns the plugin registered under name.
func (r *Registry) GetPlugin(name string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	return p, ok
}

// AllPlugins returns a snapshot of the registered plugins in registration
// order.
func (r *Registry) AllPlugins() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of distinct registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
