// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package hook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncapi/cli/internal/hook"
)

func TestContext_SetGet(t *testing.T) {
	c := hook.NewContext()

	c.Set("command", "validate")
	v, ok := c.Get("command")
	require.True(t, ok)
	assert.Equal(t, "validate", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestContext_SetOverwrites(t *testing.T) {
	c := hook.NewContext()
	c.Set("k", 1)
	c.Set("k", 2)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Len(t, c.Keys(), 1)
}

func TestContext_Delete(t *testing.T) {
	c := hook.NewContext()
	c.Set("k", 1)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestContext_Snapshot_IsCopy(t *testing.T) {
	c := hook.NewContext()
	c.Set("a", 1)

	snap := c.Snapshot()
	snap["b"] = 2

	_, ok := c.Get("b")
	assert.False(t, ok, "mutating a snapshot must not affect the context")
}

func TestContext_Reset(t *testing.T) {
	c := hook.NewContext()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Reset()

	assert.Empty(t, c.Keys())
}
