// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package plugin provides plugin discovery, registration and lifecycle
// control for the CLI.
package plugin

import (
	"context"
	"log/slog"

	"github.com/asyncapi/cli/internal/hook"
)

// Source identifies which discovery phase produced a plugin.
type Source string

// Discovery sources.
const (
	SourceBuiltin Source = "builtin"
	SourceShared  Source = "shared"
	SourceConfig  Source = "config"
)

// HostAPI is handed to a plugin's Register entry point. It is the only
// surface plugins get into the process.
type HostAPI struct {
	// Hooks registers handlers on named extension points.
	Hooks *hook.Manager

	// Logger is pre-labelled with the plugin name.
	Logger *slog.Logger

	// Options carries the plugin-specific keys from the user's
	// configuration document, verbatim.
	Options map[string]any
}

// Plugin is a loaded plugin descriptor. Register is required; Initialize
// is optional and runs in the loader's final phase. Descriptors are owned
// by the Registry for the process lifetime; there is no teardown beyond
// process exit and Host.Close.
type Plugin struct {
	Name        string
	Version     string
	Description string
	Source      Source

	Register   func(api *HostAPI) error
	Initialize func(ctx context.Context) error
}

// Host loads plugins of one runtime type (lua scripts, binaries).
type Host interface {
	// Load builds a descriptor from a validated manifest and its directory.
	Load(ctx context.Context, manifest *Manifest, dir string) (*Plugin, error)

	// Close shuts down the host and everything it loaded.
	Close(ctx context.Context) error
}
