// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package hook provides named extension points with priority ordering,
// per-handler timeouts, and failure isolation. Both built-in commands
// and loaded plugins attach handlers to hooks; a shared Context carries
// state across handlers within a resolution workflow.
package hook

import (
	"context"
	"time"
)

// Handler is a hook callback. Handlers receive the arguments passed to
// Execute; when fired through ExecuteWithContext the shared *Context is
// prepended as the first argument.
type Handler func(ctx context.Context, args ...any) (any, error)

// Defaults applied when a registration omits options.
const (
	DefaultPriority = 10
	DefaultTimeout  = 30 * time.Second
)

// Registration is one handler attached to a named hook.
type Registration struct {
	Handler  Handler
	Priority int           // higher runs first
	Timeout  time.Duration // per-invocation deadline
	Plugin   string        // owning plugin, empty for built-in handlers
}

// Option configures a Registration.
type Option func(*Registration)

// WithPriority sets the handler priority. Higher priorities run first;
// equal priorities run in registration order.
func WithPriority(p int) Option {
	return func(r *Registration) {
		r.Priority = p
	}
}

// WithTimeout sets the per-invocation deadline for the handler.
func WithTimeout(d time.Duration) Option {
	return func(r *Registration) {
		r.Timeout = d
	}
}

// WithPlugin labels the registration with the owning plugin name.
func WithPlugin(name string) Option {
	return func(r *Registration) {
		r.Plugin = name
	}
}

// Result is the outcome of one handler invocation. Results are never
// mutated after creation.
type Result struct {
	Hook     string
	Plugin   string
	Priority int
	Value    any
	Err      error
	Duration time.Duration
}

// OK reports whether the handler completed without error or timeout.
func (r Result) OK() bool {
	return r.Err == nil
}
