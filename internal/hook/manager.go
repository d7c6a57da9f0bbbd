// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Manager maintains named hook chains and the shared execution context.
// Chains stay sorted by descending priority via insertion position, so
// the ordering invariant is structural rather than re-asserted on every
// registration. Construct one Manager per process and pass it to the
// plugin loader and command dispatcher explicitly.
type Manager struct {
	chains map[string][]Registration
	shared *Context
	mu     sync.RWMutex
}

// NewManager creates a hook manager with an empty shared context.
func NewManager() *Manager {
	return &Manager{
		chains: make(map[string][]Registration),
		shared: NewContext(),
	}
}

// SharedContext returns the process-wide hook context.
func (m *Manager) SharedContext() *Context {
	return m.shared
}

// Register attaches a handler to the named hook. Options merge over the
// defaults (priority 10, timeout 30s). Handlers registered during an
// in-flight Execute of the same name take effect on the next Execute;
// execution iterates a snapshot of the chain.
func (m *Manager) Register(name string, h Handler, opts ...Option) {
	if h == nil {
		return
	}

	reg := Registration{
		Handler:  h,
		Priority: DefaultPriority,
		Timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&reg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.chains[name]
	// Insert after the last entry with priority >= reg.Priority so equal
	// priorities keep registration order.
	idx := sort.Search(len(chain), func(i int) bool {
		return chain[i].Priority < reg.Priority
	})
	chain = append(chain, Registration{})
	copy(chain[idx+1:], chain[idx:])
	chain[idx] = reg
	m.chains[name] = chain

	slog.Debug("hook handler registered",
		"hook", name,
		"plugin", reg.Plugin,
		"priority", reg.Priority,
		"timeout", reg.Timeout)
}

// Names returns all hook names with at least one handler, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.chains))
	for name := range m.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers returns a snapshot of the chain registered under name, in
// execution order.
func (m *Manager) Handlers(name string) []Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain := m.chains[name]
	out := make([]Registration, len(chain))
	copy(out, chain)
	return out
}

// Execute invokes every handler registered under name sequentially in
// chain order. Each invocation races its handler against the registered
// timeout; a timeout or failure is captured in that handler's Result and
// never blocks the rest of the chain. A missing chain yields an empty
// result slice.
//
// A timed-out handler is not cancelled: its goroutine may still complete
// and have side effects after the timeout fires. Plugin code relying on
// those side effects keeps working; callers must not assume a timeout
// stopped anything.
func (m *Manager) Execute(ctx context.Context, name string, args ...any) []Result {
	chain := m.Handlers(name)
	if len(chain) == 0 {
		return nil
	}

	execID := ulid.Make().String()
	logger := slog.Default().With("hook", name, "execution_id", execID)
	logger.Debug("executing hook chain", "handlers", len(chain))

	results := make([]Result, 0, len(chain))
	for _, reg := range chain {
		res := m.invoke(ctx, name, reg, args)
		results = append(results, res)

		status := StatusSuccess
		switch {
		case HasCode(res.Err, CodeTimeout):
			status = StatusTimeout
			logger.Warn("hook handler timed out",
				"plugin", reg.Plugin,
				"timeout", reg.Timeout)
		case HasCode(res.Err, CodePanic):
			status = StatusPanic
			logger.Error("hook handler panicked",
				"plugin", reg.Plugin,
				"error", res.Err)
		case res.Err != nil:
			status = StatusError
			logger.Warn("hook handler failed",
				"plugin", reg.Plugin,
				"error", res.Err)
		}
		RecordHookExecution(name, status)
		RecordHookDuration(name, res.Duration)
	}
	return results
}

// ExecuteWithContext is Execute with the shared Context prepended as the
// first handler argument, giving handlers read/write access to
// cross-cutting state.
func (m *Manager) ExecuteWithContext(ctx context.Context, name string, args ...any) []Result {
	withShared := make([]any, 0, len(args)+1)
	withShared = append(withShared, m.shared)
	withShared = append(withShared, args...)
	return m.Execute(ctx, name, withShared...)
}

type outcome struct {
	value any
	err   error
}

// invoke runs a single handler raced against its timeout. The result
// channel is buffered so a late handler completion never blocks the
// abandoned goroutine.
func (m *Manager) invoke(ctx context.Context, name string, reg Registration, args []any) Result {
	start := time.Now()
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: ErrPanic(name, r)}
			}
		}()
		v, err := reg.Handler(ctx, args...)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(reg.Timeout)
	defer timer.Stop()

	res := Result{
		Hook:     name,
		Plugin:   reg.Plugin,
		Priority: reg.Priority,
	}

	select {
	case out := <-done:
		res.Duration = time.Since(start)
		res.Value = out.value
		if out.err != nil && !HasCode(out.err, CodePanic) {
			res.Err = ErrFailed(name, out.err)
		} else {
			res.Err = out.err
		}
	case <-timer.C:
		res.Duration = time.Since(start)
		res.Err = ErrTimeout(name, reg.Plugin, reg.Timeout)
	case <-ctx.Done():
		res.Duration = time.Since(start)
		res.Err = ErrFailed(name, ctx.Err())
	}
	return res
}
