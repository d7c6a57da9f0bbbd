// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package plugin

import (
	"github.com/samber/oops"
)

// Error codes for plugin loading failures. All of them are recovered
// inside the loader and surfaced through logging only.
const (
	CodeLoadFailed = "PLUGIN_LOAD_FAILED"
	CodeInitFailed = "PLUGIN_INIT_FAILED"
	CodeBadShape   = "PLUGIN_BAD_SHAPE"
)

// ErrLoadFailed creates an error for a candidate that could not be
// resolved or loaded.
func ErrLoadFailed(name, dir string, cause error) error {
	return oops.Code(CodeLoadFailed).
		With("plugin", name).
		With("dir", dir).
		Wrap(cause)
}

// ErrInitFailed creates an error for a plugin whose Initialize step
// failed.
func ErrInitFailed(name string, cause error) error {
	return oops.Code(CodeInitFailed).
		With("plugin", name).
		Wrap(cause)
}

// ErrBadShape creates an error for a loaded module that does not conform
// to the plugin contract (a required register entry point is missing or
// has the wrong type).
func ErrBadShape(name, detail string) error {
	return oops.Code(CodeBadShape).
		With("plugin", name).
		Errorf("plugin does not conform to contract: %s", detail)
}
