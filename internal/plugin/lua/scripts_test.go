// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package lua

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncapi/cli/internal/hook"
)

func writeHookFile(t *testing.T, dir, name, code string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(code), 0o600))
}

func TestLoadHookScriptsRegisterStyle(t *testing.T) {
	dir := t.TempDir()
	writeHookFile(t, dir, "audit.lua", `
		function register(manager)
			manager.register("command:after", function()
				return "audited"
			end, 20, 100)
		end
	`)

	mgr := hook.NewManager()
	LoadHookScripts(context.Background(), mgr, dir)

	regs := mgr.Handlers("command:after")
	require.Len(t, regs, 1)
	assert.Equal(t, "hooks/audit", regs[0].Plugin)
	assert.Equal(t, 20, regs[0].Priority)

	results := mgr.Execute(context.Background(), "command:after")
	require.Len(t, results, 1)
	assert.Equal(t, "audited", results[0].Value)
}

func TestLoadHookScriptsHandleStyle(t *testing.T) {
	dir := t.TempDir()
	writeHookFile(t, dir, "command_before.lua", `
		function handle(cmd)
			return "saw " .. cmd
		end
	`)

	mgr := hook.NewManager()
	LoadHookScripts(context.Background(), mgr, dir)

	regs := mgr.Handlers("command:before")
	require.Len(t, regs, 1)
	assert.Equal(t, "hooks/command_before", regs[0].Plugin)

	results := mgr.Execute(context.Background(), "command:before", "validate")
	require.Len(t, results, 1)
	assert.Equal(t, "saw validate", results[0].Value)
}

func TestLoadHookScriptsSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeHookFile(t, dir, "broken.lua", `this is not lua`)
	writeHookFile(t, dir, "empty.lua", `local x = 1`)
	writeHookFile(t, dir, "init.lua", `
		function handle()
			return true
		end
	`)

	mgr := hook.NewManager()
	LoadHookScripts(context.Background(), mgr, dir)

	// Only the valid file attaches; the broken and shapeless ones are skipped.
	require.Len(t, mgr.Handlers("init"), 1)
	assert.Equal(t, []string{"init"}, mgr.Names())
}

func TestLoadHookScriptsIgnoresNonLuaEntries(t *testing.T) {
	dir := t.TempDir()
	writeHookFile(t, dir, "notes.txt", `function handle() end`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.lua"), 0o700))

	mgr := hook.NewManager()
	LoadHookScripts(context.Background(), mgr, dir)
	assert.Empty(t, mgr.Names())
}

func TestLoadHookScriptsMissingDir(t *testing.T) {
	mgr := hook.NewManager()
	LoadHookScripts(context.Background(), mgr, filepath.Join(t.TempDir(), "absent"))
	assert.Empty(t, mgr.Names())
}
