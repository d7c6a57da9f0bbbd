// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package config_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncapi/cli/internal/config"
)

func TestHistory_AppendBounded(t *testing.T) {
	h, err := config.LoadHistory(filepath.Join(t.TempDir(), "history.yaml"))
	require.NoError(t, err)

	for i := range 150 {
		h.Append(fmt.Sprintf("cmd-%d", i))
	}

	entries := h.Entries()
	require.Len(t, entries, config.MaxHistoryEntries)
	// Oldest-first order preserved: entry 0 is cmd-50, last is cmd-149.
	assert.Equal(t, "cmd-50", entries[0].Command)
	assert.Equal(t, "cmd-149", entries[len(entries)-1].Command)
}

func TestHistory_EntryFields(t *testing.T) {
	h, err := config.LoadHistory(filepath.Join(t.TempDir(), "history.yaml"))
	require.NoError(t, err)

	entry := h.Append("confi:set")
	assert.Equal(t, "confi:set", entry.Command)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
}

func TestHistory_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.yaml")

	h, err := config.LoadHistory(path)
	require.NoError(t, err)
	h.Append("validate")
	h.Append("confi:set")
	require.NoError(t, h.Save())

	again, err := config.LoadHistory(path)
	require.NoError(t, err)
	entries := again.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "validate", entries[0].Command)
	assert.Equal(t, "confi:set", entries[1].Command)
}

func TestHistory_MissingFileIsEmpty(t *testing.T) {
	h, err := config.LoadHistory(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, h.Entries())
}
