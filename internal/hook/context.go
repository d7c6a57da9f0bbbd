// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook

import (
	"sync"
)

// Context is the shared key/value store handlers use to pass state within
// and across hook chains. It lives for the whole process and is only
// cleared by an explicit Reset.
type Context struct {
	values map[string]any
	mu     sync.RWMutex
}

// NewContext creates an empty shared context.
func NewContext() *Context {
	return &Context{
		values: make(map[string]any),
	}
}

// Set stores a value under key, replacing any prior value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Delete removes the value stored under key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Keys returns all stored keys in unspecified order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a shallow copy of the stored values.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Reset clears all stored values.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
}
