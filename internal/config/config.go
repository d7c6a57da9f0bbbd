// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

// Package config loads the project configuration document and the
// command-history log. The document is discovered by walking up from the
// working directory, falling back to the XDG config dir; a missing file
// yields an empty document, never an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/asyncapi/cli/internal/xdg"
)

// FileName is the project configuration file searched for from the
// working directory upward.
const FileName = ".asyncapi.yaml"

// PluginSpec is one entry of the `plugins` mapping. Keys other than
// `enabled` are plugin-specific options passed through verbatim.
type PluginSpec struct {
	Enabled bool
	Options map[string]any
}

// Document is the parsed configuration document.
type Document struct {
	// Plugins maps plugin identifiers (package names or filesystem paths)
	// to their spec.
	Plugins map[string]PluginSpec

	// SuggestExclude holds glob patterns for command ids that must never
	// be offered as suggestions.
	SuggestExclude []string

	path string
	k    *koanf.Koanf
}

// Discover locates the configuration file, walking up from startDir and
// falling back to the XDG config dir. Returns false when no file exists.
func Discover(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	fallback := filepath.Join(xdg.ConfigDir(), "config.yaml")
	if info, err := os.Stat(fallback); err == nil && !info.IsDir() {
		return fallback, true
	}
	return "", false
}

// Load reads the document at path. An empty path yields an empty document.
// flags, when non-nil, override file values (posflag provider).
func Load(path string, flags *pflag.FlagSet) (*Document, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to merge flags: %w", err)
		}
	}

	doc := &Document{
		Plugins: make(map[string]PluginSpec),
		path:    path,
		k:       k,
	}

	// Plugin identifiers may be filesystem paths containing dots, so the
	// plugins section is read from the nested map instead of dotted keys.
	if raw, ok := k.Raw()["plugins"].(map[string]any); ok {
		for name, v := range raw {
			entry, ok := v.(map[string]any)
			if !ok {
				continue
			}
			spec := PluginSpec{Options: make(map[string]any)}
			for key, val := range entry {
				if key == "enabled" {
					spec.Enabled, _ = val.(bool)
					continue
				}
				spec.Options[key] = val
			}
			doc.Plugins[name] = spec
		}
	}

	doc.SuggestExclude = k.Strings("suggestions.exclude")

	return doc, nil
}

// Path returns the location of the loaded file, empty when none was found.
func (d *Document) Path() string {
	return d.path
}

// Dir returns the directory containing the configuration file. Relative
// plugin paths resolve against it. Empty when no file was loaded.
func (d *Document) Dir() string {
	if d.path == "" {
		return ""
	}
	return filepath.Dir(d.path)
}

// Get returns the raw value stored under a dotted key.
func (d *Document) Get(key string) any {
	return d.k.Get(key)
}

// Set stores a value under a dotted key in the in-memory document.
func (d *Document) Set(key string, value any) error {
	if err := d.k.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Save writes the document back to its file. Saving a document that was
// never loaded from a file requires SetPath first.
func (d *Document) Save() error {
	if d.path == "" {
		return fmt.Errorf("no config file path to save to")
	}
	data, err := yaml.Marshal(d.k.Raw())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := xdg.EnsureDir(filepath.Dir(d.path)); err != nil {
		return err
	}
	if err := os.WriteFile(d.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", d.path, err)
	}
	return nil
}

// SetPath sets the file location used by Save.
func (d *Document) SetPath(path string) {
	d.path = path
}
