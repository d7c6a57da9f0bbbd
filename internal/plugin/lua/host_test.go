// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/plugin"
	"github.com/asyncapi/cli/pkg/errutil"
)

// writeScript puts a main.lua into a fresh plugin directory and returns
// the directory and a matching manifest.
func writeScript(t *testing.T, name, code string) (string, *plugin.Manifest) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.lua"), []byte(code), 0o600))
	return dir, &plugin.Manifest{
		Name:    name,
		Version: "1.0.0",
		Type:    plugin.TypeLua,
		Entry:   "main.lua",
	}
}

func newAPI(mgr *hook.Manager, options map[string]any) *plugin.HostAPI {
	return &plugin.HostAPI{
		Hooks:   mgr,
		Logger:  slog.Default(),
		Options: options,
	}
}

func TestLoadRegistersHookHandler(t *testing.T) {
	dir, manifest := writeScript(t, "greeter", `
		function register(api)
			api.on("validate:before", function(path)
				return "checked " .. path
			end, 5)
		end
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	p, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)
	assert.Equal(t, "greeter", p.Name)
	assert.Nil(t, p.Initialize)

	mgr := hook.NewManager()
	require.NoError(t, p.Register(newAPI(mgr, nil)))

	regs := mgr.Handlers("validate:before")
	require.Len(t, regs, 1)
	assert.Equal(t, "greeter", regs[0].Plugin)
	assert.Equal(t, 5, regs[0].Priority)

	results := mgr.Execute(context.Background(), "validate:before", "app.yaml")
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "checked app.yaml", results[0].Value)
}

func TestLoadExposesOptions(t *testing.T) {
	dir, manifest := writeScript(t, "opts", `
		seen = nil
		function register(api)
			seen = api.option("format")
			api.on("init", function() return seen end)
		end
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	p, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)

	mgr := hook.NewManager()
	require.NoError(t, p.Register(newAPI(mgr, map[string]any{"format": "markdown"})))

	results := mgr.Execute(context.Background(), "init")
	require.Len(t, results, 1)
	assert.Equal(t, "markdown", results[0].Value)
}

func TestLoadOptionalInitialize(t *testing.T) {
	dir, manifest := writeScript(t, "lifecycle", `
		ready = false
		function register(api) end
		function initialize()
			ready = true
		end
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	p, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)
	require.NotNil(t, p.Initialize)
	require.NoError(t, p.Initialize(context.Background()))
}

func TestLoadMissingRegister(t *testing.T) {
	dir, manifest := writeScript(t, "shapeless", `
		local x = 1
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	_, err := host.Load(context.Background(), manifest, dir)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, plugin.CodeBadShape)
}

func TestLoadBrokenScript(t *testing.T) {
	dir, manifest := writeScript(t, "broken", `this is not lua`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	_, err := host.Load(context.Background(), manifest, dir)
	require.Error(t, err)
}

func TestLoadMissingEntryFile(t *testing.T) {
	host := NewHost()
	manifest := &plugin.Manifest{
		Name:    "ghost",
		Version: "1.0.0",
		Type:    plugin.TypeLua,
		Entry:   "main.lua",
	}

	_, err := host.Load(context.Background(), manifest, t.TempDir())
	require.Error(t, err)
}

func TestHandlerReceivesSharedContext(t *testing.T) {
	dir, manifest := writeScript(t, "ctxuser", `
		function register(api)
			api.on("command:before", function(ctx)
				local cmd = ctx.get("command")
				ctx.set("seen", cmd)
				return cmd
			end)
		end
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	p, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)

	mgr := hook.NewManager()
	require.NoError(t, p.Register(newAPI(mgr, nil)))

	mgr.SharedContext().Set("command", "validate")
	results := mgr.ExecuteWithContext(context.Background(), "command:before")
	require.Len(t, results, 1)
	assert.Equal(t, "validate", results[0].Value)

	seen, ok := mgr.SharedContext().Get("seen")
	require.True(t, ok)
	assert.Equal(t, "validate", seen)
}

func TestHandlerErrorSurfacesInResult(t *testing.T) {
	dir, manifest := writeScript(t, "faulty", `
		function register(api)
			api.on("error", function()
				error("script failure")
			end)
		end
	`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	p, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)

	mgr := hook.NewManager()
	require.NoError(t, p.Register(newAPI(mgr, nil)))

	results := mgr.Execute(context.Background(), "error")
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "script failure")
}

func TestCloseRejectsFurtherLoads(t *testing.T) {
	host := NewHost()
	require.NoError(t, host.Close(context.Background()))

	dir, manifest := writeScript(t, "late", `function register(api) end`)
	_, err := host.Load(context.Background(), manifest, dir)
	require.Error(t, err)
}

func TestPluginsListsLoaded(t *testing.T) {
	dir, manifest := writeScript(t, "listed", `function register(api) end`)
	host := NewHost()
	t.Cleanup(func() { _ = host.Close(context.Background()) })

	_, err := host.Load(context.Background(), manifest, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"listed"}, host.Plugins())
}
