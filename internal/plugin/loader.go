// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package plugin

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/asyncapi/cli/internal/config"
	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/pkg/errutil"
)

// ConventionPrefix marks installable plugin packages in the shared
// plugin directory. The remainder of the entry name is the plugin's
// logical identifier.
const ConventionPrefix = "asyncapi-cli-plugin-"

// Loader discovers plugins from three sources and feeds them into the
// Registry, then runs each plugin's optional Initialize step. Every load
// attempt is isolated: one bad candidate never aborts the pipeline.
type Loader struct {
	registry   *Registry
	hooks      *hook.Manager
	doc        *config.Document
	builtinDir string
	sharedDir  string
	hosts      map[Type]Host
}

// LoaderOption configures the Loader.
type LoaderOption func(*Loader)

// WithBuiltinDir sets the directory scanned for built-in plugins.
func WithBuiltinDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.builtinDir = dir
	}
}

// WithSharedDir sets the shared package directory scanned for
// convention-prefixed plugin packages.
func WithSharedDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.sharedDir = dir
	}
}

// WithHost installs the host used for plugins of the given type. Plugins
// of a type with no host are logged and skipped.
func WithHost(t Type, h Host) LoaderOption {
	return func(l *Loader) {
		l.hosts[t] = h
	}
}

// NewLoader creates a plugin loader feeding the given registry and hook
// manager. doc may be an empty document.
func NewLoader(registry *Registry, hooks *hook.Manager, doc *config.Document, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		hooks:    hooks,
		doc:      doc,
		hosts:    make(map[Type]Host),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPlugins runs the four discovery phases strictly in sequence:
// built-in directory, shared package directory, user-declared entries,
// then initialization of everything registered. Failures in any phase
// are logged and never abort the remaining work.
func (l *Loader) LoadPlugins(ctx context.Context) {
	l.loadBuiltins(ctx)
	l.loadShared(ctx)
	l.loadDeclared(ctx)
	l.initialize(ctx)

	slog.Info("plugin loading complete", "registered", l.registry.Len())
}

// loadBuiltins scans the built-in plugin directory. Each immediate
// subdirectory is one candidate.
func (l *Loader) loadBuiltins(ctx context.Context) {
	if l.builtinDir == "" {
		return
	}
	for _, dir := range l.scanDirs(l.builtinDir, "") {
		l.loadCandidate(ctx, dir, SourceBuiltin, nil)
	}
}

// loadShared scans the shared package directory for entries carrying the
// convention prefix.
func (l *Loader) loadShared(ctx context.Context) {
	if l.sharedDir == "" {
		return
	}
	for _, dir := range l.scanDirs(l.sharedDir, ConventionPrefix) {
		l.loadCandidate(ctx, dir, SourceShared, nil)
	}
}

// loadDeclared loads the enabled entries of the configuration document's
// plugins mapping. Identifiers that look like filesystem paths resolve
// against the config file's directory; anything else is treated as a
// package identifier inside the shared directory, auto-prefixed with the
// convention prefix. Entries whose resolved name is already registered
// are skipped, which makes this phase idempotent against phases 1-2.
func (l *Loader) loadDeclared(ctx context.Context) {
	if l.doc == nil || len(l.doc.Plugins) == 0 {
		return
	}

	ids := make([]string, 0, len(l.doc.Plugins))
	for id := range l.doc.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		spec := l.doc.Plugins[id]
		if !spec.Enabled {
			slog.Debug("skipping disabled plugin", "plugin", id)
			continue
		}

		if isPathIdentifier(id) {
			dir := id
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(l.doc.Dir(), dir)
			}
			l.loadCandidate(ctx, dir, SourceConfig, spec.Options)
			continue
		}

		pkg := id
		if !strings.HasPrefix(pkg, ConventionPrefix) {
			pkg = ConventionPrefix + pkg
		}
		logical := strings.TrimPrefix(pkg, ConventionPrefix)
		if _, ok := l.registry.GetPlugin(logical); ok {
			slog.Debug("plugin already registered, skipping declared entry",
				"plugin", logical)
			RecordPluginLoad(SourceConfig, StatusSkipped)
			continue
		}
		l.loadCandidate(ctx, filepath.Join(l.sharedDir, pkg), SourceConfig, spec.Options)
	}
}

// initialize runs every registered plugin's optional Initialize step.
// One plugin's failure does not prevent initializing the rest.
func (l *Loader) initialize(ctx context.Context) {
	for _, p := range l.registry.AllPlugins() {
		if p.Initialize == nil {
			continue
		}
		if err := p.Initialize(ctx); err != nil {
			errutil.LogError(slog.Default(), "plugin initialization failed",
				ErrInitFailed(p.Name, err))
			RecordPluginLoad(p.Source, StatusInitError)
		}
	}
}

// scanDirs lists immediate subdirectories of root, filtered by prefix
// when non-empty. An unreadable or missing root is logged and yields
// nothing.
func (l *Loader) scanDirs(root, prefix string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read plugin directory", "dir", root, "error", err)
		}
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		dirs = append(dirs, filepath.Join(root, entry.Name()))
	}
	return dirs
}

// loadCandidate loads one plugin directory: manifest, host load,
// register entry point, registration. Any failure is logged and the
// candidate is dropped.
func (l *Loader) loadCandidate(ctx context.Context, dir string, source Source, options map[string]any) {
	name := filepath.Base(dir)

	manifestPath := filepath.Join(dir, "plugin.yaml")
	data, err := os.ReadFile(filepath.Clean(manifestPath))
	if err != nil {
		errutil.LogError(slog.Default(), "skipping plugin without manifest",
			ErrLoadFailed(name, dir, err))
		RecordPluginLoad(source, StatusLoadError)
		return
	}

	if err := ValidateSchema(data); err != nil {
		errutil.LogError(slog.Default(), "skipping plugin with malformed manifest",
			ErrLoadFailed(name, dir, err))
		RecordPluginLoad(source, StatusLoadError)
		return
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		errutil.LogError(slog.Default(), "skipping plugin with invalid manifest",
			ErrLoadFailed(name, dir, err))
		RecordPluginLoad(source, StatusLoadError)
		return
	}

	host, ok := l.hosts[manifest.Type]
	if !ok {
		slog.Warn("no host configured for plugin type, skipping",
			"plugin", manifest.Name,
			"type", manifest.Type)
		RecordPluginLoad(source, StatusSkipped)
		return
	}

	p, err := host.Load(ctx, manifest, dir)
	if err != nil {
		errutil.LogError(slog.Default(), "failed to load plugin",
			ErrLoadFailed(manifest.Name, dir, err))
		RecordPluginLoad(source, StatusLoadError)
		return
	}
	p.Source = source

	if options == nil && l.doc != nil {
		if spec, ok := l.doc.Plugins[p.Name]; ok {
			options = spec.Options
		}
	}

	api := &HostAPI{
		Hooks:   l.hooks,
		Logger:  slog.Default().With("plugin", p.Name),
		Options: options,
	}
	if err := p.Register(api); err != nil {
		errutil.LogError(slog.Default(), "plugin register entry point failed",
			ErrLoadFailed(p.Name, dir, err))
		RecordPluginLoad(source, StatusLoadError)
		return
	}

	// Registration happens only after the register entry point succeeds,
	// so a failed plugin never reaches the initialize phase or the final
	// registered count.
	l.registry.RegisterPlugin(p)

	RecordPluginLoad(source, StatusLoaded)
	slog.Info("loaded plugin",
		"plugin", p.Name,
		"type", manifest.Type,
		"version", p.Version,
		"source", source)
}

// isPathIdentifier reports whether a declared plugin identifier is a
// relative or absolute filesystem path rather than a package name.
func isPathIdentifier(id string) bool {
	return strings.HasPrefix(id, "./") ||
		strings.HasPrefix(id, "../") ||
		strings.HasPrefix(id, "/") ||
		id == "." || id == ".."
}
