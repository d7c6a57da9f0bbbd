// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/asyncapi/cli/internal/hook"
	"github.com/asyncapi/cli/internal/plugin"
)

// Compile-time interface check.
var _ plugin.Host = (*Host)(nil)

// scriptPlugin holds a loaded script and the state it runs in. The mutex
// serializes all calls into the state: gopher-lua states are not safe
// for concurrent use, and a timed-out hook handler may still be running
// when the next one for the same plugin starts.
type scriptPlugin struct {
	manifest *plugin.Manifest
	state    *lua.LState
	mu       sync.Mutex
}

// Host manages Lua script plugins. A plugin is a directory with a
// plugin.yaml manifest and an entry script whose global `register`
// function receives the host api table. An optional global `initialize`
// runs during the loader's final phase.
type Host struct {
	factory *StateFactory
	plugins map[string]*scriptPlugin
	mu      sync.RWMutex
	closed  bool
}

// NewHost creates a Lua plugin host.
func NewHost() *Host {
	return &Host{
		factory: NewStateFactory(),
		plugins: make(map[string]*scriptPlugin),
	}
}

// Load reads, runs, and shape-checks a Lua plugin, returning its
// descriptor. The script must define a global `register` function; a
// missing or mistyped one is a typed conformance error, not a panic.
func (h *Host) Load(ctx context.Context, manifest *plugin.Manifest, dir string) (*plugin.Plugin, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, oops.In("lua").With("plugin", manifest.Name).New("host is closed")
	}

	entryPath := filepath.Join(dir, manifest.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return nil, oops.In("lua").
			With("plugin", manifest.Name).
			With("path", entryPath).
			Hint("failed to read entry file").
			Wrap(err)
	}

	L, err := h.factory.NewState(ctx)
	if err != nil {
		return nil, oops.In("lua").With("plugin", manifest.Name).Wrap(err)
	}

	if err := L.DoString(string(code)); err != nil {
		L.Close()
		return nil, oops.In("lua").
			With("plugin", manifest.Name).
			With("path", entryPath).
			Hint("entry script failed to run").
			Wrap(err)
	}

	if _, ok := L.GetGlobal("register").(*lua.LFunction); !ok {
		L.Close()
		return nil, plugin.ErrBadShape(manifest.Name, "global register function is missing")
	}
	_, hasInit := L.GetGlobal("initialize").(*lua.LFunction)

	sp := &scriptPlugin{
		manifest: manifest,
		state:    L,
	}
	h.plugins[manifest.Name] = sp

	desc := &plugin.Plugin{
		Name:        manifest.Name,
		Version:     manifest.Version,
		Description: manifest.Description,
		Register: func(api *plugin.HostAPI) error {
			return h.register(sp, api)
		},
	}
	if hasInit {
		desc.Initialize = func(context.Context) error {
			return h.callGlobal(sp, "initialize")
		}
	}
	return desc, nil
}

// register invokes the script's register function with the api table.
func (h *Host) register(sp *scriptPlugin, api *plugin.HostAPI) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	L := sp.state
	fn, ok := L.GetGlobal("register").(*lua.LFunction)
	if !ok {
		return plugin.ErrBadShape(sp.manifest.Name, "global register function is missing")
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, h.apiTable(sp, api)); err != nil {
		return oops.In("lua").With("plugin", sp.manifest.Name).Wrap(err)
	}
	return nil
}

// apiTable builds the table passed to register:
//
//	api.log(level, message)
//	api.on(hook, fn [, priority [, timeout_ms]])
//	api.option(key)
func (h *Host) apiTable(sp *scriptPlugin, api *plugin.HostAPI) *lua.LTable {
	L := sp.state
	tbl := L.NewTable()

	L.SetField(tbl, "log", L.NewFunction(func(ls *lua.LState) int {
		level := ls.CheckString(1)
		message := ls.CheckString(2)
		logger := api.Logger
		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}))

	L.SetField(tbl, "on", L.NewFunction(func(ls *lua.LState) int {
		name := ls.CheckString(1)
		fn := ls.CheckFunction(2)

		opts := []hook.Option{hook.WithPlugin(sp.manifest.Name)}
		if ls.GetTop() >= 3 {
			opts = append(opts, hook.WithPriority(int(ls.CheckNumber(3))))
		}
		if ls.GetTop() >= 4 {
			timeout := time.Duration(ls.CheckNumber(4)) * time.Millisecond
			opts = append(opts, hook.WithTimeout(timeout))
		}

		api.Hooks.Register(name, h.handler(sp, fn), opts...)
		return 0
	}))

	L.SetField(tbl, "option", L.NewFunction(func(ls *lua.LState) int {
		key := ls.CheckString(1)
		ls.Push(toLua(ls, api.Options[key]))
		return 1
	}))

	return tbl
}

// handler bridges a Lua function into a hook.Handler.
func (h *Host) handler(sp *scriptPlugin, fn *lua.LFunction) hook.Handler {
	return bridgeHandler(sp.manifest.Name, &sp.mu, sp.state, fn)
}

// callGlobal invokes a no-argument global function on the plugin state.
func (h *Host) callGlobal(sp *scriptPlugin, name string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	L := sp.state
	fn, ok := L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return plugin.ErrBadShape(sp.manifest.Name, "global "+name+" function is missing")
	}
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}); err != nil {
		return oops.In("lua").With("plugin", sp.manifest.Name).Wrap(err)
	}
	return nil
}

// contextTable exposes the shared hook context to a script as a table
// with get/set/delete functions.
func contextTable(L *lua.LState, hctx *hook.Context) *lua.LTable {
	tbl := L.NewTable()

	L.SetField(tbl, "get", L.NewFunction(func(ls *lua.LState) int {
		key := ls.CheckString(1)
		v, ok := hctx.Get(key)
		if !ok {
			ls.Push(lua.LNil)
			return 1
		}
		ls.Push(toLua(ls, v))
		return 1
	}))

	L.SetField(tbl, "set", L.NewFunction(func(ls *lua.LState) int {
		key := ls.CheckString(1)
		hctx.Set(key, fromLua(ls.Get(2)))
		return 0
	}))

	L.SetField(tbl, "delete", L.NewFunction(func(ls *lua.LState) int {
		hctx.Delete(ls.CheckString(1))
		return 0
	}))

	return tbl
}

// Plugins returns the names of all loaded script plugins.
func (h *Host) Plugins() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.plugins))
	for name := range h.plugins {
		names = append(names, name)
	}
	return names
}

// Close shuts down all loaded script states.
func (h *Host) Close(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for name, sp := range h.plugins {
		sp.mu.Lock()
		sp.state.Close()
		sp.mu.Unlock()
		slog.Debug("closed lua plugin", "plugin", name)
	}
	h.plugins = make(map[string]*scriptPlugin)
	return nil
}
