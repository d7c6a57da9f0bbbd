// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/asyncapi/cli/internal/xdg"
)

// MaxHistoryEntries bounds the command-history log; the oldest entry is
// evicted first once the bound is reached.
const MaxHistoryEntries = 100

// HistoryEntry records one failed command lookup.
type HistoryEntry struct {
	ID        string    `yaml:"id"`
	Command   string    `yaml:"command"`
	Timestamp time.Time `yaml:"timestamp"`
}

// History is the bounded command log kept on the long-lived configuration
// state, persisted in the XDG state dir.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.Mutex
}

// HistoryPath returns the default location of the history file.
func HistoryPath() string {
	return filepath.Join(xdg.StateDir(), "command_history.yaml")
}

// LoadHistory reads the history file at path. A missing file yields an
// empty history.
func LoadHistory(path string) (*History, error) {
	h := &History{path: path}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &h.entries); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", path, err)
	}
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
	return h, nil
}

// Append records a command, evicting the oldest entry past the bound.
func (h *History) Append(command string) HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{
		ID:        ulid.Make().String(),
		Command:   command,
		Timestamp: time.Now().UTC(),
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > MaxHistoryEntries {
		h.entries = h.entries[len(h.entries)-MaxHistoryEntries:]
	}
	return entry
}

// Entries returns a snapshot of the log, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Save writes the log to its file with 0600 permissions.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := yaml.Marshal(h.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := xdg.EnsureDir(filepath.Dir(h.path)); err != nil {
		return err
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history %s: %w", h.path, err)
	}
	return nil
}
