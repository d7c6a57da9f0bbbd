// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AsyncAPI Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/asyncapi/cli/internal/hook"
)

// hookScript is one auto-registered hook file and its state.
type hookScript struct {
	name  string
	state *lua.LState
	mu    sync.Mutex
}

// LoadHookScripts scans dir for *.lua files and wires them into the hook
// manager. A file defining a global `register` function is called with a
// manager binding; a file defining only a global `handle` function is
// registered under a hook name derived from the file name (underscores
// become colons, so command_before.lua attaches to command:before).
// Loading is best-effort: a broken file is logged and skipped.
func LoadHookScripts(ctx context.Context, mgr *hook.Manager, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read hooks directory", "dir", dir, "error", err)
		}
		return
	}

	factory := NewStateFactory()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := loadHookScript(ctx, factory, mgr, path); err != nil {
			slog.Warn("skipping hook script", "path", path, "error", err)
		}
	}
}

func loadHookScript(ctx context.Context, factory *StateFactory, mgr *hook.Manager, path string) error {
	code, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}

	L, err := factory.NewState(ctx)
	if err != nil {
		return err
	}

	if err := L.DoString(string(code)); err != nil {
		L.Close()
		return oops.In("lua").With("path", path).Wrap(err)
	}

	base := strings.TrimSuffix(filepath.Base(path), ".lua")
	script := &hookScript{name: base, state: L}

	if regFn, ok := L.GetGlobal("register").(*lua.LFunction); ok {
		if err := L.CallByParam(lua.P{
			Fn:      regFn,
			NRet:    0,
			Protect: true,
		}, managerTable(script, mgr)); err != nil {
			L.Close()
			return oops.In("lua").With("path", path).Wrap(err)
		}
		return nil
	}

	if handleFn, ok := L.GetGlobal("handle").(*lua.LFunction); ok {
		hookName := strings.ReplaceAll(base, "_", ":")
		mgr.Register(hookName,
			bridgeHandler(base, &script.mu, L, handleFn),
			hook.WithPlugin("hooks/"+base))
		return nil
	}

	L.Close()
	return oops.In("lua").With("path", path).New("script defines neither register nor handle")
}

// managerTable exposes hook registration to a script:
//
//	manager.register(hook, fn [, priority [, timeout_ms]])
func managerTable(script *hookScript, mgr *hook.Manager) *lua.LTable {
	L := script.state
	tbl := L.NewTable()

	L.SetField(tbl, "register", L.NewFunction(func(ls *lua.LState) int {
		name := ls.CheckString(1)
		fn := ls.CheckFunction(2)

		opts := []hook.Option{hook.WithPlugin("hooks/" + script.name)}
		if ls.GetTop() >= 3 {
			opts = append(opts, hook.WithPriority(int(ls.CheckNumber(3))))
		}
		if ls.GetTop() >= 4 {
			timeout := time.Duration(ls.CheckNumber(4)) * time.Millisecond
			opts = append(opts, hook.WithTimeout(timeout))
		}

		mgr.Register(name, bridgeHandler(script.name, &script.mu, script.state, fn), opts...)
		return 0
	}))

	return tbl
}

// bridgeHandler converts a Lua function into a hook.Handler. Arguments
// are converted to Lua values; a *hook.Context argument becomes a table
// with get/set/delete accessors. The mutex serializes calls into the
// owning state.
func bridgeHandler(owner string, mu *sync.Mutex, L *lua.LState, fn *lua.LFunction) hook.Handler {
	return func(_ context.Context, args ...any) (any, error) {
		mu.Lock()
		defer mu.Unlock()

		lvArgs := make([]lua.LValue, 0, len(args))
		for _, arg := range args {
			if hctx, ok := arg.(*hook.Context); ok {
				lvArgs = append(lvArgs, contextTable(L, hctx))
				continue
			}
			lvArgs = append(lvArgs, toLua(L, arg))
		}

		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lvArgs...); err != nil {
			return nil, oops.In("lua").With("script", owner).Wrap(err)
		}

		ret := L.Get(-1)
		L.Pop(1)
		return fromLua(ret), nil
	}
}
