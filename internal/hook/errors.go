// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook

import (
	"time"

	"github.com/samber/oops"
)

// Error codes for hook execution failures.
const (
	CodeTimeout = "HOOK_TIMEOUT"
	CodePanic   = "HOOK_PANIC"
	CodeFailed  = "HOOK_FAILED"
)

// ErrTimeout creates an error for a handler that exceeded its deadline.
func ErrTimeout(hook, plugin string, timeout time.Duration) error {
	return oops.Code(CodeTimeout).
		With("hook", hook).
		With("plugin", plugin).
		With("timeout_ms", timeout.Milliseconds()).
		Errorf("hook handler timed out after %s", timeout)
}

// ErrPanic creates an error for a handler that panicked.
func ErrPanic(hook string, recovered any) error {
	return oops.Code(CodePanic).
		With("hook", hook).
		With("panic", recovered).
		Errorf("hook handler panicked: %v", recovered)
}

// ErrFailed wraps an error returned by a handler.
func ErrFailed(hook string, cause error) error {
	return oops.Code(CodeFailed).
		With("hook", hook).
		Wrap(cause)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
